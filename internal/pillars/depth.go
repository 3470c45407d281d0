package pillars

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/geo-scorer/internal/types"
)

const diversityWindow = 1000

var (
	exampleMarker = regexp.MustCompile(`(?i)\b(for example|for instance|e\.g\.|such as|case study|example:|consider the)`)

	stopwords = map[string]bool{
		"that":  true, "this": true, "with": true, "from": true, "have": true, "were": true,
		"they":  true, "their": true, "there": true, "which": true, "would": true, "about": true,
		"these": true, "those": true, "what": true, "when": true, "where": true, "will": true,
		"your":  true, "been": true, "into": true, "than": true, "then": true, "them": true,
		"also":  true, "more": true, "most": true, "some": true, "such": true, "only": true,
		"other": true, "over": true, "very": true, "just": true, "each": true, "because": true,
		"while": true, "should": true, "could": true, "does": true, "being": true, "here": true,
	}
)

// Depth scores length, breadth of sections, vocabulary and concrete detail.
type Depth struct{ base }

// NewDepth returns the topical depth pillar.
func NewDepth() *Depth {
	return &Depth{base{key: KeyDepth, name: "Topical Depth", maxScore: 15}}
}

// Score implements Scorer.
func (p *Depth) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	words := doc.Words

	score := ladder(float64(len(words)), step{2000, 5}, step{1200, 4}, step{800, 3}, step{400, 2}, step{200, 1})

	h2 := doc.HeadingCount(2)
	score += ladder(float64(h2), step{6, 3}, step{4, 2}, step{2, 1})

	terms := make([]string, 0, diversityWindow)
	numeric := 0
	for _, w := range words {
		if strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			numeric++
		}
		if len(terms) == diversityWindow {
			continue
		}
		token := strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
		if len([]rune(token)) > 3 && !stopwords[token] {
			terms = append(terms, token)
		}
	}
	distinct := make(map[string]bool, len(terms))
	for _, t := range terms {
		distinct[t] = true
	}
	diversity := ratio(len(distinct), len(terms))
	score += ladder(diversity, step{0.5, 3}, step{0.4, 2}, step{0.3, 1})

	examples := len(exampleMarker.FindAllStringIndex(doc.Prose(), -1)) + doc.CodeBlocks
	score += ladder(float64(examples), step{5, 2}, step{2, 1})
	score += ladder(float64(numeric), step{10, 2}, step{4, 1})

	return finalize(score, p.maxScore, types.Evidence{
		"word_count":        len(words),
		"h2_count":          h2,
		"lexical_diversity": types.RoundTo(diversity, 3),
		"example_count":     examples,
		"code_block_count":  doc.CodeBlocks,
		"numeric_count":     numeric,
	})
}
