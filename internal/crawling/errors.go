// Package crawling audits a site: it discovers same-site pages from a seed,
// classifies and picks them, and scores each one.
package crawling

import (
	"errors"
	"fmt"
)

// ErrNoScorer is returned by Audit when called without a ScoreFunc.
var ErrNoScorer = errors.New("crawling: no scorer configured")

// SeedError means the audit could not start because the seed page failed.
type SeedError struct {
	URL   string
	Cause error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("audit seed %s: %v", e.URL, e.Cause)
}

func (e *SeedError) Unwrap() error { return e.Cause }

// LinkExtractionError reports a base URL or document that links cannot be
// resolved against.
type LinkExtractionError struct {
	Base   string
	Reason string
	Cause  error
}

func (e *LinkExtractionError) Error() string {
	msg := fmt.Sprintf("extract links from %q: %s", e.Base, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LinkExtractionError) Unwrap() error { return e.Cause }

// ClassificationError is an LLM page-classification failure. Callers fall
// back to ClassifyURL.
type ClassificationError struct {
	Links int
	Stage string
	Cause error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify %d links: %s: %v", e.Links, e.Stage, e.Cause)
}

func (e *ClassificationError) Unwrap() error { return e.Cause }
