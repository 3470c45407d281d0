// Package pillars implements the independent scoring dimensions of a GEO report.
// Every pillar is a Scorer: a pure function of (content, Context) apart from the
// two that fetch robots.txt and llms.txt through a Fetcher.
package pillars

import (
	"context"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/types"
)

// Pillar keys.
const (
	KeyStructure          types.PillarKey = "structure"
	KeyReadability        types.PillarKey = "readability"
	KeyConfidence         types.PillarKey = "confidence"
	KeyMachineReadability types.PillarKey = "machine_readability"
	KeyBotAccess          types.PillarKey = "bot_access"
	KeyDefinitions        types.PillarKey = "definitions"
	KeyFreshness          types.PillarKey = "freshness"
	KeyAuthority          types.PillarKey = "authority"
	KeyEntity             types.PillarKey = "entity"
	KeyFAQ                types.PillarKey = "faq"
	KeyChunkability       types.PillarKey = "chunkability"
	KeyDepth              types.PillarKey = "depth"
	KeyUniqueness         types.PillarKey = "uniqueness"
)

// DefaultFetchTimeout bounds each robots.txt / llms.txt fetch.
const DefaultFetchTimeout = 10 * time.Second

// Scorer is implemented by every pillar.
type Scorer interface {
	Key() types.PillarKey
	Name() string
	MaxScore() float64
	// Score never fails: missing inputs and fetch errors degrade to documented
	// zero-credit branches recorded in the evidence.
	Score(ctx context.Context, content string, pc *Context) *types.ScoreResult
}

// FetchedText is the body and status of a fetched discovery file.
type FetchedText struct {
	Body       string
	StatusCode int
}

// Fetcher retrieves auxiliary files (robots.txt, llms.txt). A non-2xx status is
// returned as a result, not an error; errors mean the request itself failed.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (*FetchedText, error)
}

// Context carries the optional inputs some pillars use.
type Context struct {
	URL       string      `mapstructure:"url" json:"url,omitempty"`
	CorpusID  string      `mapstructure:"corpus_id" json:"corpus_id,omitempty"`
	Entity    string      `mapstructure:"entity" json:"entity,omitempty"`
	Embedding []float64   `mapstructure:"embedding" json:"embedding,omitempty"`
	Neighbors [][]float64 `mapstructure:"neighbors" json:"neighbors,omitempty"`
	Now       time.Time   `mapstructure:"now" json:"now,omitempty"`

	// Document is the pre-parsed content. The orchestrator fills it once per pass.
	Document *extract.Document `mapstructure:"-" json:"-"`
}

// ContextFromMap decodes a loosely typed context map. Unknown keys are ignored and
// missing keys leave zero values; "corpusId" is accepted as an alias.
func ContextFromMap(m map[string]any) (*Context, error) {
	pc := &Context{}
	if len(m) == 0 {
		return pc, nil
	}

	input := make(map[string]any, len(m))
	for k, v := range m {
		input[k] = v
	}
	if v, ok := input["corpusId"]; ok {
		if _, exists := input["corpus_id"]; !exists {
			input["corpus_id"] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           pc,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("failed to decode scoring context: %w", err)
	}
	return pc, nil
}

// WithDocument returns a shallow copy of pc holding doc.
func (pc *Context) WithDocument(doc *extract.Document) *Context {
	c := Context{}
	if pc != nil {
		c = *pc
	}
	c.Document = doc
	return &c
}

// document returns the pre-parsed document or parses content.
func (pc *Context) document(content string) *extract.Document {
	if pc != nil && pc.Document != nil {
		return pc.Document
	}
	return extract.Parse(content)
}

func (pc *Context) url() string {
	if pc == nil {
		return ""
	}
	return pc.URL
}

func (pc *Context) now() time.Time {
	if pc == nil || pc.Now.IsZero() {
		return time.Now().UTC()
	}
	return pc.Now
}

// finalize clamps score to [0, max] and rounds it to two decimals.
func finalize(score, maxScore float64, ev types.Evidence) *types.ScoreResult {
	return &types.ScoreResult{
		Score:    types.RoundTo(types.Clamp(score, 0, maxScore), 2),
		MaxScore: maxScore,
		Evidence: ev,
	}
}

// base holds the identity shared by every pillar.
type base struct {
	key      types.PillarKey
	name     string
	maxScore float64
}

func (b base) Key() types.PillarKey { return b.key }
func (b base) Name() string         { return b.name }
func (b base) MaxScore() float64    { return b.maxScore }

// ladder returns the points of the first step whose threshold v meets.
// Steps must be ordered by descending threshold.
func ladder(v float64, steps ...step) float64 {
	for _, s := range steps {
		if v >= s.min {
			return s.points
		}
	}
	return 0
}

type step struct {
	min    float64
	points float64
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// All returns one instance of every pillar in registry order.
func All(net Network) []Scorer {
	return []Scorer{
		NewStructure(),
		NewReadability(),
		NewConfidence(),
		NewMachineReadability(net),
		NewBotAccess(net),
		NewDefinitions(),
		NewFreshness(),
		NewAuthority(),
		NewEntity(),
		NewFAQ(),
		NewChunkability(),
		NewDepth(),
		NewUniqueness(),
	}
}
