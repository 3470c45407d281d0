package scoring

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/recommend"
	"github.com/jonathan/geo-scorer/internal/types"
)

// Engine runs registered pillars over content. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	regs   []registration
	index  map[types.PillarKey]int
	clock  func() time.Time
	logger *slog.Logger
}

// Pillars describes every registered pillar in registry order.
func (e *Engine) Pillars() []PillarInfo {
	out := make([]PillarInfo, 0, len(e.regs))
	for _, r := range e.regs {
		out = append(out, PillarInfo{
			Key:      r.scorer.Key(),
			Name:     r.scorer.Name(),
			Tier:     r.tier,
			MaxScore: r.scorer.MaxScore(),
		})
	}
	return out
}

// PillarTier reports the minimum tier of a pillar registered on this engine.
func (e *Engine) PillarTier(key types.PillarKey) (types.Tier, bool) {
	i, ok := e.index[key]
	if !ok {
		return "", false
	}
	return e.regs[i].tier, true
}

// SelectPillars returns the registered keys active for tier, in registry order.
func (e *Engine) SelectPillars(tier types.Tier) ([]types.PillarKey, error) {
	regs, err := e.forTier(tier)
	if err != nil {
		return nil, err
	}
	keys := make([]types.PillarKey, len(regs))
	for i, r := range regs {
		keys[i] = r.scorer.Key()
	}
	return keys, nil
}

// MaxScore returns the budget of the pillars active for tier.
func (e *Engine) MaxScore(tier types.Tier) (float64, error) {
	regs, err := e.forTier(tier)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, r := range regs {
		total += r.scorer.MaxScore()
	}
	return total, nil
}

func (e *Engine) forTier(tier types.Tier) ([]registration, error) {
	if !tier.Valid() {
		return nil, &UnknownTierError{Tier: string(tier)}
	}
	var regs []registration
	for _, r := range e.regs {
		if tier.Includes(r.tier) {
			regs = append(regs, r)
		}
	}
	return regs, nil
}

// Score evaluates every pillar active for tier and assembles the full report.
func (e *Engine) Score(ctx context.Context, content string, pc *pillars.Context, tier types.Tier) (*types.GeoScoreReport, error) {
	regs, err := e.forTier(tier)
	if err != nil {
		return nil, err
	}
	reports := e.run(ctx, content, pc, regs)
	score, maxScore := totals(reports)
	percentage := types.Percentage(score, maxScore)
	grade := Grade(percentage)

	byKey := make(map[types.PillarKey]types.PillarReport, len(reports))
	for _, r := range reports {
		byKey[r.Key] = r
	}

	report := &types.GeoScoreReport{
		Score:           score,
		MaxScore:        maxScore,
		Percentage:      percentage,
		Grade:           grade,
		Pillars:         byKey,
		Recommendations: recommend.Build(reports),
		Summary:         Summarize(reports, percentage, grade),
		ScoredAt:        e.clock().UTC().Truncate(time.Second),
	}
	e.logger.Info("geo score computed",
		"tier", tier, "score", score, "max_score", maxScore, "grade", grade,
		"recommendations", len(report.Recommendations))
	return report, nil
}

// QuickScore runs the same evaluation as Score but keeps only the aggregation.
func (e *Engine) QuickScore(ctx context.Context, content string, pc *pillars.Context, tier types.Tier) (*types.QuickScore, error) {
	regs, err := e.forTier(tier)
	if err != nil {
		return nil, err
	}
	reports := e.run(ctx, content, pc, regs)
	score, maxScore := totals(reports)
	percentage := types.Percentage(score, maxScore)

	quick := &types.QuickScore{
		Score:      score,
		Percentage: percentage,
		Grade:      Grade(percentage),
		Pillars:    make(map[types.PillarKey]types.QuickPillar, len(reports)),
	}
	for _, r := range reports {
		quick.Pillars[r.Key] = types.QuickPillar{Score: r.Score, Max: r.MaxScore, Tier: r.Tier}
	}
	return quick, nil
}

// ScorePartial evaluates only the named pillars, whatever their tier. Duplicate
// keys are scored once.
func (e *Engine) ScorePartial(ctx context.Context, content string, keys []types.PillarKey, pc *pillars.Context) (map[types.PillarKey]types.PillarReport, error) {
	want := make(map[types.PillarKey]bool, len(keys))
	for _, k := range keys {
		if _, ok := e.index[k]; !ok {
			return nil, &UnknownPillarError{Key: k}
		}
		want[k] = true
	}
	var regs []registration
	for _, r := range e.regs {
		if want[r.scorer.Key()] {
			regs = append(regs, r)
		}
	}

	out := make(map[types.PillarKey]types.PillarReport, len(regs))
	for _, r := range e.run(ctx, content, pc, regs) {
		out[r.Key] = r
	}
	return out, nil
}

// run scores regs concurrently against one parsed document and returns the
// reports in registry order. Pillars never fail, so neither does run.
func (e *Engine) run(ctx context.Context, content string, pc *pillars.Context, regs []registration) []types.PillarReport {
	if len(regs) == 0 {
		return nil
	}
	shared := pc.WithDocument(extract.Parse(content))
	if shared.Now.IsZero() {
		shared.Now = e.clock().UTC()
	}

	reports := make([]types.PillarReport, len(regs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(len(regs))
	for i, r := range regs {
		g.Go(func() error {
			start := time.Now()
			res := r.scorer.Score(gCtx, content, shared)
			reports[i] = types.NewPillarReport(r.scorer.Key(), r.scorer.Name(), r.tier, res)
			e.logger.Debug("pillar scored",
				"pillar", r.scorer.Key(), "score", res.Score, "max_score", res.MaxScore,
				"duration", time.Since(start))
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func totals(reports []types.PillarReport) (score, maxScore float64) {
	for _, r := range reports {
		score += r.Score
		maxScore += r.MaxScore
	}
	return types.RoundTo(score, 2), maxScore
}
