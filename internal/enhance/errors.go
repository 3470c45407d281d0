// Package enhance adds optional corpus benchmarking and LLM edit suggestions on
// top of a finished report. Scoring itself never depends on this package.
package enhance

import (
	"errors"
	"fmt"
)

// ErrNoSearcher is returned when benchmarking is requested without a vector searcher.
var ErrNoSearcher = errors.New("no vector searcher configured")

// ErrEmptyCorpus is returned by a searcher that holds no vectors for the corpus.
var ErrEmptyCorpus = errors.New("corpus has no indexed documents")

// SuggestionError wraps a failed suggestion request.
type SuggestionError struct {
	Message string
	Cause   error
}

func (e *SuggestionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("suggestion error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("suggestion error: %s", e.Message)
}

func (e *SuggestionError) Unwrap() error {
	return e.Cause
}
