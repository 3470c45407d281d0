// Package llm wraps the generative model used for optional content suggestions
// and embeddings. Scoring never depends on it.
package llm

import "fmt"

// ModelTier selects how capable (and how expensive) a model call is.
type ModelTier string

const (
	// TierLite covers short classification and rewrite hints.
	TierLite ModelTier = "lite"
	// TierStandard covers structured suggestion output.
	TierStandard ModelTier = "standard"
	// TierAdvanced covers full-section rewrites.
	TierAdvanced ModelTier = "advanced"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
)

// DefaultTemperature keeps suggestion output stable between runs.
const DefaultTemperature float32 = 0.1

// Config holds model names per tier plus the embedding model.
type Config struct {
	Provider       Provider             `json:"provider" yaml:"provider"`
	Models         map[ModelTier]string `json:"models" yaml:"models"`
	EmbeddingModel string               `json:"embedding_model" yaml:"embedding_model"`
	Temperature    float32              `json:"temperature" yaml:"temperature"`
}

// DefaultConfig returns the Gemini defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		EmbeddingModel: "text-embedding-004",
		Temperature:    DefaultTemperature,
	}
}

// GetModel returns the model for tier, falling back to standard and then lite.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok && model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with model assigned to tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return &out
}

// Validate reports configuration that would make every call fail.
func (c *Config) Validate() error {
	if c.Provider != ProviderGemini {
		return fmt.Errorf("unsupported llm provider %q", c.Provider)
	}
	if c.GetModel(TierStandard) == "" {
		return fmt.Errorf("no llm model configured")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm temperature %.2f out of range [0, 2]", c.Temperature)
	}
	return nil
}
