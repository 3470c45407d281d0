package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/prompts"
	"github.com/jonathan/geo-scorer/internal/types"
)

const (
	promptFile = "enhance.json"

	defaultMaxPillars   = 3
	defaultMaxPerPillar = 3
	maxPromptRunes      = 12000
)

// Suggestion is one proposed edit.
type Suggestion struct {
	Pillar  types.PillarKey `json:"pillar"`
	Action  string          `json:"action"`
	Example string          `json:"example,omitempty"`
	Impact  string          `json:"impact,omitempty"`
}

// Suggestions is the decoded model reply.
type Suggestions struct {
	Suggestions []Suggestion `json:"suggestions"`
	Summary     string       `json:"summary,omitempty"`
}

// SuggesterOptions tunes a Suggester. Zero values pick defaults.
type SuggesterOptions struct {
	Tier         llm.ModelTier
	MaxPillars   int
	MaxPerPillar int
	Logger       *slog.Logger
}

// Suggester asks an LLM for edits targeting a report's weakest pillars.
type Suggester struct {
	client       llm.Client
	tier         llm.ModelTier
	maxPillars   int
	maxPerPillar int
	logger       *slog.Logger
}

// NewSuggester returns a Suggester backed by client.
func NewSuggester(client llm.Client, opts SuggesterOptions) *Suggester {
	s := &Suggester{
		client:       client,
		tier:         opts.Tier,
		maxPillars:   opts.MaxPillars,
		maxPerPillar: opts.MaxPerPillar,
		logger:       opts.Logger,
	}
	if s.tier == "" {
		s.tier = llm.TierStandard
	}
	if s.maxPillars <= 0 {
		s.maxPillars = defaultMaxPillars
	}
	if s.maxPerPillar <= 0 {
		s.maxPerPillar = defaultMaxPerPillar
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Suggest requests edits for the highest priority recommendations of report.
// A report without recommendations returns an empty result without calling the model.
func (s *Suggester) Suggest(ctx context.Context, content string, report *types.GeoScoreReport) (*Suggestions, error) {
	if report == nil {
		return nil, &SuggestionError{Message: "report is required"}
	}
	targets := s.targets(report)
	if len(targets) == 0 {
		return &Suggestions{Suggestions: []Suggestion{}}, nil
	}

	system, err := prompts.Get(promptFile, "suggestions-system")
	if err != nil {
		return nil, &SuggestionError{Message: "failed to load system prompt", Cause: err}
	}
	weaknesses, err := describeWeaknesses(report, targets)
	if err != nil {
		return nil, &SuggestionError{Message: "failed to describe weaknesses", Cause: err}
	}
	task, err := prompts.Render(promptFile, "suggestions-task", map[string]string{
		"Grade":        report.Grade,
		"Percentage":   strconv.FormatFloat(report.Percentage, 'f', 1, 64),
		"Weaknesses":   weaknesses,
		"MaxPerPillar": strconv.Itoa(s.maxPerPillar),
	})
	if err != nil {
		return nil, &SuggestionError{Message: "failed to render task prompt", Cause: err}
	}

	text := extract.Parse(content).Text
	prompt := llm.BuildJSONPrompt(llm.SuggestionsSchema(system), task, llm.Truncate(text, maxPromptRunes))

	s.logger.Info("requesting suggestions",
		slog.Int("pillars", len(targets)),
		slog.String("model", s.client.GetModel(s.tier)))

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return nil, &SuggestionError{Message: "model call failed", Cause: err}
	}
	var out Suggestions
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return nil, &SuggestionError{Message: "invalid model reply", Cause: err}
	}
	return s.filter(&out, targets), nil
}

// RewriteOpening asks for a definition-first rewrite of paragraph about topic.
func (s *Suggester) RewriteOpening(ctx context.Context, topic, paragraph string) (string, error) {
	topic, paragraph = strings.TrimSpace(topic), strings.TrimSpace(paragraph)
	if topic == "" || paragraph == "" {
		return "", &SuggestionError{Message: "topic and paragraph are required"}
	}
	prompt, err := prompts.Render(promptFile, "rewrite-opening", map[string]string{
		"Topic":     topic,
		"Paragraph": paragraph,
	})
	if err != nil {
		return "", &SuggestionError{Message: "failed to render rewrite prompt", Cause: err}
	}
	out, err := s.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &SuggestionError{Message: "model call failed", Cause: err}
	}
	return strings.TrimSpace(out), nil
}

// DescribeBenchmark turns a Benchmark into a short narrative.
func (s *Suggester) DescribeBenchmark(ctx context.Context, b Benchmark) (string, error) {
	gaps := make([]string, 0, len(b.Gaps))
	for _, g := range b.Gaps {
		gaps = append(gaps, fmt.Sprintf("%s (%.1f points below median)", g.Pillar, g.Gap))
	}
	if len(gaps) == 0 {
		gaps = append(gaps, "none")
	}
	prompt, err := prompts.Render(promptFile, "benchmark-summary", map[string]string{
		"NeighborCount": strconv.Itoa(b.NeighborCount),
		"Percentile":    strconv.FormatFloat(b.Percentile, 'f', 1, 64),
		"Gaps":          strings.Join(gaps, "; "),
	})
	if err != nil {
		return "", &SuggestionError{Message: "failed to render benchmark prompt", Cause: err}
	}
	out, err := s.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &SuggestionError{Message: "model call failed", Cause: err}
	}
	return strings.TrimSpace(out), nil
}

func (s *Suggester) targets(report *types.GeoScoreReport) []types.PillarKey {
	var keys []types.PillarKey
	for _, rec := range report.Recommendations {
		if len(keys) == s.maxPillars {
			break
		}
		keys = append(keys, rec.Pillar)
	}
	return keys
}

// filter drops suggestions for pillars that were not asked about and caps
// each pillar at maxPerPillar.
func (s *Suggester) filter(in *Suggestions, targets []types.PillarKey) *Suggestions {
	allowed := make(map[types.PillarKey]int, len(targets))
	for _, k := range targets {
		allowed[k] = 0
	}
	out := &Suggestions{Summary: strings.TrimSpace(in.Summary), Suggestions: []Suggestion{}}
	for _, sg := range in.Suggestions {
		n, ok := allowed[sg.Pillar]
		if !ok || n >= s.maxPerPillar || strings.TrimSpace(sg.Action) == "" {
			continue
		}
		allowed[sg.Pillar] = n + 1
		sg.Action = strings.TrimSpace(sg.Action)
		sg.Impact = strings.ToLower(strings.TrimSpace(sg.Impact))
		out.Suggestions = append(out.Suggestions, sg)
	}
	return out
}

func describeWeaknesses(report *types.GeoScoreReport, keys []types.PillarKey) (string, error) {
	var sb strings.Builder
	for _, key := range keys {
		p, ok := report.Pillar(key)
		if !ok {
			continue
		}
		evidence, err := json.Marshal(p.Evidence)
		if err != nil {
			return "", fmt.Errorf("failed to encode evidence for %s: %w", key, err)
		}
		fmt.Fprintf(&sb, "- %s (%s): %.1f/%.0f; measurements: %s\n", p.Name, key, p.Score, p.MaxScore, evidence)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
