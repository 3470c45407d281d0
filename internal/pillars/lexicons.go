package pillars

import (
	"regexp"

	"github.com/jonathan/geo-scorer/internal/extract"
)

// Fixed lexicons shared by the lexical pillars. They are compiled once and never
// modified.
var (
	hedgeLexicon = extract.NewLexicon(
		"may", "might", "could", "possibly", "perhaps", "probably", "maybe",
		"likely", "unlikely", "seems", "seem", "appears to", "appear to",
		"somewhat", "arguably", "generally", "typically", "usually", "often",
		"sometimes", "in some cases", "to some extent", "i think", "we think",
		"i believe", "we believe", "it is possible", "potentially", "presumably",
		"supposedly", "apparently", "roughly", "sort of", "kind of", "tend to",
		"tends to", "suggests", "not sure",
	)

	confidenceLexicon = extract.NewLexicon(
		"clearly", "definitely", "certainly", "proven", "research shows",
		"studies show", "data shows", "evidence shows", "in fact", "the answer is",
		"specifically", "precisely", "without doubt", "undoubtedly", "demonstrates",
		"confirms", "guaranteed", "we recommend", "always", "never", "the key is",
		"the best way", "is defined as",
	)

	declarativeVerb = regexp.MustCompile(`(?i)\b(is|are|was|were|has|have|had|does|do|did|will|can|must|` +
		`provides?|includes?|means|requires?|uses?|offers?|supports?|contains?|creates?|allows?|` +
		`enables?|helps?|makes?|shows?|works?|costs?|takes?|gives?|becomes?|remains?|consists?|` +
		`represents?|refers?|reduces?|increases?|improves?|runs?|stores?|returns?)\b`)

	interrogative = regexp.MustCompile(`(?i)^(what|why|how|when|where|who|whom|which|whose|can|could|should|would|will|is|are|do|does|did)\b`)

	fillerOpening = regexp.MustCompile(`(?i)^(in this (article|post|guide)|welcome|have you ever|let's|let us|today we|ever wondered|are you)\b`)

	numericToken = regexp.MustCompile(`\d`)
)

// isDeclarative reports whether a sentence asserts something rather than asks.
func isDeclarative(sentence string) bool {
	if len(sentence) > 0 && sentence[len(sentence)-1] == '?' {
		return false
	}
	return declarativeVerb.MatchString(sentence)
}

func isQuestion(sentence string) bool {
	return len(sentence) > 0 && sentence[len(sentence)-1] == '?'
}
