package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ScoreRequest is the body of POST /score, /score/stream and /score/quick.
type ScoreRequest struct {
	Content   string         `json:"content,omitempty" validate:"required_without=URL,max=5000000"`
	URL       string         `json:"url,omitempty" validate:"omitempty,url,startswith=http"`
	Tier      string         `json:"tier,omitempty" validate:"omitempty,oneof=free pro agency"`
	Context   map[string]any `json:"context,omitempty"`
	Benchmark bool           `json:"benchmark,omitempty"`
	Suggest   bool           `json:"suggest,omitempty"`
	SkipCache bool           `json:"skip_cache,omitempty"`
}

// Normalize lowercases and trims the tier and URL.
func (r *ScoreRequest) Normalize() {
	r.Tier = strings.ToLower(strings.TrimSpace(r.Tier))
	r.URL = strings.TrimSpace(r.URL)
}

// Validate checks the request with struct tags.
func (r *ScoreRequest) Validate() error {
	return validate.Struct(r)
}

// RequestedTier returns the tier named by the request, Free when empty.
func (r *ScoreRequest) RequestedTier() (Tier, error) {
	if r.Tier == "" {
		return TierFree, nil
	}
	return ParseTier(r.Tier)
}

// PartialScoreRequest is the body of POST /score/partial.
type PartialScoreRequest struct {
	Content string         `json:"content,omitempty" validate:"required_without=URL,max=5000000"`
	URL     string         `json:"url,omitempty" validate:"omitempty,url,startswith=http"`
	Pillars []string       `json:"pillars" validate:"required,min=1,dive,required"`
	Context map[string]any `json:"context,omitempty"`
}

// Validate checks the request with struct tags.
func (r *PartialScoreRequest) Validate() error {
	return validate.Struct(r)
}

// Keys returns the requested pillars as keys, trimmed and lowercased.
func (r *PartialScoreRequest) Keys() []PillarKey {
	keys := make([]PillarKey, 0, len(r.Pillars))
	for _, p := range r.Pillars {
		keys = append(keys, PillarKey(strings.ToLower(strings.TrimSpace(p))))
	}
	return keys
}

// PartialScoreResponse is the body returned by POST /score/partial.
type PartialScoreResponse struct {
	Pillars map[PillarKey]PillarReport `json:"pillars"`
}
