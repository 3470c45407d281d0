package pillars

import (
	"context"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/types"
)

const (
	longSentenceWords  = 25
	longParagraphWords = 150
	complexSyllables   = 3
)

// Readability scores Flesch ease, grade level and length distributions.
type Readability struct{ base }

// NewReadability returns the readability pillar.
func NewReadability() *Readability {
	return &Readability{base{key: KeyReadability, name: "Readability", maxScore: 15}}
}

// FleschReadingEase returns 206.835 - 1.015*(w/s) - 84.6*(syl/w) clamped to [0, 100].
func FleschReadingEase(words, sentences, syllables int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	ease := 206.835 - 1.015*float64(words)/float64(sentences) - 84.6*float64(syllables)/float64(words)
	return types.Clamp(ease, 0, 100)
}

// FleschKincaidGrade returns 0.39*(w/s) + 11.8*(syl/w) - 15.59, floored at 0.
func FleschKincaidGrade(words, sentences, syllables int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	grade := 0.39*float64(words)/float64(sentences) + 11.8*float64(syllables)/float64(words) - 15.59
	if grade < 0 {
		return 0
	}
	return grade
}

// ReadingLevel names a Flesch reading ease band.
func ReadingLevel(ease float64) string {
	switch {
	case ease >= 90:
		return "very_easy"
	case ease >= 80:
		return "easy"
	case ease >= 70:
		return "fairly_easy"
	case ease >= 60:
		return "standard"
	case ease >= 50:
		return "fairly_difficult"
	case ease >= 30:
		return "difficult"
	default:
		return "very_difficult"
	}
}

// Score implements Scorer.
func (p *Readability) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	words := doc.Words
	if len(words) == 0 {
		return finalize(0, p.maxScore, types.Evidence{"reason": "no text content", "word_count": 0})
	}

	syllables, complexWords := 0, 0
	for _, w := range words {
		n := extract.CountSyllables(w)
		syllables += n
		if n >= complexSyllables {
			complexWords++
		}
	}

	sentenceLengths := make([]int, 0, len(doc.Sentences))
	for _, s := range doc.Sentences {
		sentenceLengths = append(sentenceLengths, len(extract.Words(s)))
	}
	if len(sentenceLengths) == 0 {
		sentenceLengths = append(sentenceLengths, len(words))
	}
	sentences := len(sentenceLengths)

	ease := FleschReadingEase(len(words), sentences, syllables)
	grade := FleschKincaidGrade(len(words), sentences, syllables)

	score := 0.0
	switch {
	case ease >= 60 && ease <= 80:
		score += 5
	case ease > 80:
		score += 4
	case ease >= 50:
		score += 4
	case ease >= 30:
		score += 2.5
	default:
		score += ease / 30 * 2.5
	}

	switch {
	case grade >= 6 && grade <= 10:
		score += 3
	case grade < 6:
		score += 2
	case grade <= 12:
		score += 2
	case grade <= 14:
		score++
	}

	totalSentenceWords, longSentences := 0, 0
	for _, n := range sentenceLengths {
		totalSentenceWords += n
		if n > longSentenceWords {
			longSentences++
		}
	}
	avgSentence := float64(totalSentenceWords) / float64(sentences)
	longRatio := ratio(longSentences, sentences)
	switch {
	case avgSentence <= 20 && longRatio <= 0.2:
		score += 3
	case avgSentence <= 25 && longRatio <= 0.35:
		score += 2
	case avgSentence <= 30:
		score++
	}

	avgParagraph, longParagraphs := 0.0, 0
	if len(doc.Paragraphs) > 0 {
		total := 0
		for _, para := range doc.Paragraphs {
			n := len(extract.Words(para))
			total += n
			if n > longParagraphWords {
				longParagraphs++
			}
		}
		avgParagraph = float64(total) / float64(len(doc.Paragraphs))
		switch {
		case avgParagraph >= 40 && avgParagraph <= 120 && longParagraphs == 0:
			score += 2
		case avgParagraph <= 150:
			score++
		}
	}

	complexRatio := ratio(complexWords, len(words))
	switch {
	case complexRatio <= 0.10:
		score += 2
	case complexRatio <= 0.15:
		score += 1.5
	case complexRatio <= 0.20:
		score++
	}

	return finalize(score, p.maxScore, types.Evidence{
		"flesch_reading_ease":  types.RoundTo(ease, 1),
		"flesch_kincaid_grade": types.RoundTo(grade, 1),
		"reading_level":        ReadingLevel(ease),
		"word_count":           len(words),
		"sentence_count":       sentences,
		"syllable_count":       syllables,
		"avg_sentence_length":  types.RoundTo(avgSentence, 1),
		"long_sentence_ratio":  types.RoundTo(longRatio, 2),
		"paragraph_count":      len(doc.Paragraphs),
		"avg_paragraph_length": types.RoundTo(avgParagraph, 1),
		"long_paragraph_count": longParagraphs,
		"complex_word_ratio":   types.RoundTo(complexRatio, 3),
		"complex_word_count":   complexWords,
	})
}
