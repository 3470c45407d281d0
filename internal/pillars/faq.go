package pillars

import (
	"context"
	"strings"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/types"
)

const (
	answeredMinWords = 10
	conciseMaxWords  = 40
)

// FAQ scores question-shaped headings and the answers beneath them.
type FAQ struct{ base }

// NewFAQ returns the question coverage pillar.
func NewFAQ() *FAQ {
	return &FAQ{base{key: KeyFAQ, name: "Question Coverage", maxScore: 15}}
}

// IsQuestionHeading reports whether a heading is phrased as a question.
func IsQuestionHeading(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasSuffix(text, "?") || interrogative.MatchString(text)
}

// Score implements Scorer.
func (p *FAQ) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)

	questions := make([]string, 0)
	answered, concise := 0, 0
	for _, section := range doc.Sections {
		if section.Level == 0 || !IsQuestionHeading(section.Heading) {
			continue
		}
		questions = append(questions, section.Heading)
		if len(extract.Words(section.Body)) >= answeredMinWords {
			answered++
		}
		if strings.TrimSpace(section.Body) == "" {
			continue
		}
		if n := len(extract.Words(extract.FirstSentence(section.Body))); n > 0 && n <= conciseMaxWords {
			concise++
		}
	}
	answeredRatio := ratio(answered, len(questions))
	hasFAQSchema := doc.HasSchemaType("FAQPage", "QAPage")

	score := ladder(float64(len(questions)), step{5, 5}, step{3, 4}, step{1, 2})
	switch {
	case answeredRatio >= 0.8:
		score += 4
	case answeredRatio >= 0.5:
		score += 3
	case answeredRatio > 0:
		score += 1.5
	}
	score += ladder(float64(concise), step{3, 2}, step{1, 1})
	if hasFAQSchema {
		score += 3
	}
	if doc.DetailsCount >= 1 {
		score++
	}

	return finalize(score, p.maxScore, types.Evidence{
		"question_headings":      questions,
		"question_heading_count": len(questions),
		"answered_count":         answered,
		"answered_ratio":         types.RoundTo(answeredRatio, 2),
		"concise_answer_count":   concise,
		"has_faq_schema":         hasFAQSchema,
		"details_count":          doc.DetailsCount,
	})
}
