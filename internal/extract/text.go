package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// minSentenceLength is the longest fragment that is dropped by SplitSentences.
const minSentenceLength = 10

// Normalize applies NFKC normalisation and collapses all whitespace runs to one space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(text)), " ")
}

// SplitSentences splits text after '.', '!' or '?' when followed by whitespace.
// Fragments of minSentenceLength characters or fewer are dropped.
func SplitSentences(text string) []string {
	runes := []rune(text)
	sentences := make([]string, 0)
	add := func(rs []rune) {
		s := strings.TrimSpace(string(rs))
		if utf8.RuneCountInString(s) > minSentenceLength {
			sentences = append(sentences, s)
		}
	}

	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if unicode.IsSpace(runes[i+1]) {
				add(runes[start : i+1])
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		add(runes[start:])
	}
	return sentences
}

// Words returns whitespace separated tokens that contain at least one letter or digit.
func Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.IndexFunc(f, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			words = append(words, f)
		}
	}
	return words
}

// CountSyllables estimates syllables with a vowel-group heuristic: letters only,
// words of three letters or fewer count as one, a trailing silent "e" is dropped and
// maximal runs of [aeiouy] are counted, with a minimum of one.
func CountSyllables(word string) int {
	var sb strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	w := sb.String()
	if utf8.RuneCountInString(w) <= 3 {
		return 1
	}
	w = strings.TrimSuffix(w, "e")

	count := 0
	inVowel := false
	for _, r := range w {
		if strings.ContainsRune("aeiouy", r) {
			if !inVowel {
				count++
			}
			inVowel = true
		} else {
			inVowel = false
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// FirstSentence returns the first sentence of text, or the trimmed text when it has
// no sentence boundary.
func FirstSentence(text string) string {
	if s := SplitSentences(text); len(s) > 0 {
		return s[0]
	}
	return strings.TrimSpace(text)
}

// CleanWhitespace trims every line and drops empty ones.
func CleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = Normalize(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
