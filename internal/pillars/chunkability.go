package pillars

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/types"
)

var (
	leadingAnaphora = regexp.MustCompile(`(?i)^(this|that|these|those|it|its|they|them|he|she|such|also|however|` +
		`additionally|furthermore|moreover|as mentioned|as noted|as discussed|the above|the former|the latter)\b`)

	genericHeadings = map[string]bool{
		"introduction":   true, "intro": true, "overview": true, "conclusion": true,
		"summary":        true, "more": true, "details": true, "other": true, "misc": true,
		"background":     true, "notes": true, "faq": true, "faqs": true, "about": true,
		"final thoughts": true, "wrapping up": true, "getting started": true,
	}
)

// Chunkability scores how well the content splits into self-contained passages
// for retrieval.
type Chunkability struct{ base }

// NewChunkability returns the retrieval chunkability pillar.
func NewChunkability() *Chunkability {
	return &Chunkability{base{key: KeyChunkability, name: "Retrieval Chunkability", maxScore: 15}}
}

// Score implements Scorer.
func (p *Chunkability) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	score := 0.0

	sectionWords, sections := 0, 0
	for _, s := range doc.Sections {
		if n := len(extract.Words(s.Body)); n > 0 {
			sectionWords += n
			sections++
		}
	}
	avgSection := 0.0
	if sections > 0 {
		avgSection = float64(sectionWords) / float64(sections)
		switch {
		case avgSection >= 100 && avgSection <= 400:
			score += 5
		case avgSection >= 50 && avgSection <= 600:
			score += 3
		default:
			score++
		}
	}

	paragraphs := doc.Paragraphs
	if len(paragraphs) == 0 {
		paragraphs = doc.Blocks
	}
	selfContained, longest := 0, 0
	for _, para := range paragraphs {
		if !leadingAnaphora.MatchString(para) {
			selfContained++
		}
		longest = max(longest, len(extract.Words(para)))
	}
	selfContainedRatio := ratio(selfContained, len(paragraphs))
	if len(paragraphs) > 0 {
		switch {
		case selfContainedRatio >= 0.9:
			score += 4
		case selfContainedRatio >= 0.75:
			score += 3
		case selfContainedRatio >= 0.5:
			score += 2
		default:
			score++
		}
		switch {
		case longest <= 200:
			score += 3
		case longest <= 300:
			score += 1.5
		}
	}

	headingWords, generic := 0, 0
	for _, h := range doc.Headings {
		headingWords += len(extract.Words(h.Text))
		if genericHeadings[strings.ToLower(strings.TrimRight(h.Text, ":?. "))] {
			generic++
		}
	}
	avgHeading := ratio(headingWords, len(doc.Headings))
	genericRatio := ratio(generic, len(doc.Headings))
	switch {
	case len(doc.Headings) == 0, genericRatio > 0.5:
	case avgHeading >= 3 && avgHeading <= 10:
		score += 3
	case avgHeading >= 2:
		score += 1.5
	}

	return finalize(score, p.maxScore, types.Evidence{
		"section_count":           sections,
		"avg_section_words":       types.RoundTo(avgSection, 1),
		"paragraph_count":         len(paragraphs),
		"self_contained_ratio":    types.RoundTo(selfContainedRatio, 2),
		"longest_paragraph_words": longest,
		"heading_count":           len(doc.Headings),
		"avg_heading_words":       types.RoundTo(avgHeading, 1),
		"generic_heading_ratio":   types.RoundTo(genericRatio, 2),
	})
}
