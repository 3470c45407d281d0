package extract

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/golang/groupcache/lru"
)

// Lexicon matches a fixed list of words or phrases on word boundaries,
// case-insensitively. A Lexicon is immutable and safe for concurrent use.
type Lexicon struct {
	phrases []string
	re      *regexp.Regexp
}

// NewLexicon compiles the phrases into a single matcher. Longer phrases are tried
// first so "it seems" wins over "it".
func NewLexicon(phrases ...string) *Lexicon {
	sorted := append([]string(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, p := range sorted {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(p))
	}
	return &Lexicon{
		phrases: phrases,
		re:      regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Count returns the number of non-overlapping matches in text.
func (l *Lexicon) Count(text string) int {
	return len(l.re.FindAllStringIndex(text, -1))
}

// Matches reports whether any phrase occurs in text.
func (l *Lexicon) Matches(text string) bool {
	return l.re.MatchString(text)
}

// Found returns the distinct phrases present in text, lowercased, in match order.
func (l *Lexicon) Found(text string) []string {
	seen := make(map[string]bool)
	found := make([]string, 0)
	for _, m := range l.re.FindAllString(text, -1) {
		m = strings.ToLower(m)
		if !seen[m] {
			seen[m] = true
			found = append(found, m)
		}
	}
	return found
}

// Phrases returns the phrases the lexicon was built from.
func (l *Lexicon) Phrases() []string {
	return append([]string(nil), l.phrases...)
}

// phraseCacheSize bounds the compiled patterns CountPhrase keeps; entity names
// vary per request.
const phraseCacheSize = 256

var compiledPhrases = struct {
	sync.Mutex
	cache *lru.Cache
}{cache: lru.New(phraseCacheSize)}

func phrasePattern(phrase string) *regexp.Regexp {
	key := strings.ToLower(phrase)
	compiledPhrases.Lock()
	defer compiledPhrases.Unlock()
	if re, ok := compiledPhrases.cache.Get(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(key))
	compiledPhrases.cache.Add(key, re)
	return re
}

// CountPhrase counts standalone occurrences of phrase in text, ignoring case.
// A match must not be glued to a letter, digit or underscore on either side, so
// "C++" and ".NET" count like plain words while "ASP.NET" holds no ".NET".
func CountPhrase(text, phrase string) int {
	if strings.TrimSpace(phrase) == "" {
		return 0
	}
	re := phrasePattern(phrase)
	count := 0
	for start := 0; start < len(text); {
		loc := re.FindStringIndex(text[start:])
		if loc == nil {
			break
		}
		from, to := start+loc[0], start+loc[1]
		if !isWordByte(text, from-1) && !isWordByte(text, to) {
			count++
			start = to
			continue
		}
		_, size := utf8.DecodeRuneInString(text[from:])
		start = from + size
	}
	return count
}

// isWordByte reports whether text[i] is an ASCII word character, matching \b.
func isWordByte(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
