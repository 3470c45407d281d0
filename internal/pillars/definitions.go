package pillars

import (
	"context"
	"regexp"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/types"
)

var definitionPattern = regexp.MustCompile(`(?i)\b(is|are)\s+(a|an|the)\b|\bis defined as\b|\brefers to\b|\bmeans\b|` +
	`\bis a type of\b|\b(also )?known as\b|\bstands for\b|\bis the process of\b|\bdescribes\b`)

// Definitions scores how clearly the content defines its subject.
type Definitions struct{ base }

// NewDefinitions returns the definitional clarity pillar.
func NewDefinitions() *Definitions {
	return &Definitions{base{key: KeyDefinitions, name: "Definitional Clarity", maxScore: 10}}
}

// Score implements Scorer.
func (p *Definitions) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	paragraphs := doc.Paragraphs
	if len(paragraphs) == 0 {
		paragraphs = doc.Blocks
	}

	firstParagraph := ""
	for _, para := range paragraphs {
		if len(extract.Words(para)) >= 5 {
			firstParagraph = para
			break
		}
	}
	firstWords := len(extract.Words(firstParagraph))
	firstHasDefinition := firstParagraph != "" && definitionPattern.MatchString(firstParagraph)

	definitionSentences := 0
	for _, s := range doc.Sentences {
		if !isQuestion(s) && definitionPattern.MatchString(s) {
			definitionSentences++
		}
	}

	score := 0.0
	if firstHasDefinition {
		score += 4
	}
	score += ladder(float64(definitionSentences), step{3, 2}, step{1, 1})
	switch {
	case firstParagraph == "":
	case firstWords >= 20 && firstWords <= 80:
		score += 2
	case firstWords <= 120:
		score++
	}
	termMarkup := doc.DefinitionElements + doc.DefinitionLists
	if termMarkup >= 1 {
		score += 2
	}

	return finalize(score, p.maxScore, types.Evidence{
		"has_first_paragraph":        firstParagraph != "",
		"first_paragraph_definition": firstHasDefinition,
		"first_paragraph_word_count": firstWords,
		"definition_sentence_count":  definitionSentences,
		"term_markup_count":          termMarkup,
	})
}
