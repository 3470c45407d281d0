package pillars

import (
	"context"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/types"
)

// Confidence scores declarative, quotable writing and penalizes hedging.
type Confidence struct{ base }

// NewConfidence returns the declarative confidence pillar.
func NewConfidence() *Confidence {
	return &Confidence{base{key: KeyConfidence, name: "Declarative Confidence", maxScore: 15}}
}

// Score implements Scorer.
func (p *Confidence) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	wordCount := doc.WordCount()
	if wordCount == 0 {
		return finalize(0, p.maxScore, types.Evidence{"reason": "no text content", "word_count": 0})
	}
	prose := doc.Prose()
	sentences := doc.Sentences

	declarative, questions, quotable := 0, 0, 0
	for _, s := range sentences {
		if isQuestion(s) {
			questions++
			continue
		}
		decl := isDeclarative(s)
		if decl {
			declarative++
		}
		n := len(extract.Words(s))
		if n >= 8 && n <= 30 && (decl || numericToken.MatchString(s)) && !hedgeLexicon.Matches(s) {
			quotable++
		}
	}
	declarativeRatio := ratio(declarative, len(sentences))

	score := 0.0
	switch {
	case declarativeRatio >= 0.7:
		score += 5
	case declarativeRatio >= 0.5:
		score += 4
	case declarativeRatio >= 0.3:
		score += 2.5
	default:
		score += declarativeRatio / 0.3 * 2.5
	}

	hedges := hedgeLexicon.Count(prose)
	hedgeDensity := float64(hedges) / float64(wordCount) * 100
	switch {
	case hedgeDensity <= 0.5:
		score += 3
	case hedgeDensity <= 1.0:
		score += 2
	case hedgeDensity <= 2.0:
		score++
	}

	confident := confidenceLexicon.Count(prose)
	score += ladder(float64(confident), step{5, 2}, step{3, 1.5}, step{1, 1})
	score += ladder(float64(quotable), step{5, 2}, step{3, 1.5}, step{1, 1})

	startsWithAnswer := false
	if len(doc.Blocks) > 0 {
		first := extract.FirstSentence(doc.Blocks[0])
		startsWithAnswer = isDeclarative(first) && !hedgeLexicon.Matches(first) && !fillerOpening.MatchString(first)
	}
	directElements := doc.OrderedLists + doc.UnorderedLists + doc.BoldCount + doc.Tables
	directness := min(1.5, 0.5*float64(directElements))
	if startsWithAnswer {
		directness += 1.5
	}
	score += directness

	return finalize(score, p.maxScore, types.Evidence{
		"sentence_count":     len(sentences),
		"declarative_count":  declarative,
		"question_count":     questions,
		"declarative_ratio":  types.RoundTo(declarativeRatio, 3),
		"hedge_count":        hedges,
		"hedge_density":      types.RoundTo(hedgeDensity, 2),
		"hedges_found":       hedgeLexicon.Found(prose),
		"confidence_count":   confident,
		"quotable_count":     quotable,
		"starts_with_answer": startsWithAnswer,
		"direct_elements":    directElements,
		"directness_score":   directness,
		"word_count":         wordCount,
	})
}
