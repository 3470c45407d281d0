package types

import "math"

// ScoreResult is the output of a single pillar.
// Invariant: 0 <= Score <= MaxScore.
type ScoreResult struct {
	Score    float64  `json:"score"`
	MaxScore float64  `json:"max_score"`
	Evidence Evidence `json:"evidence"`
}

// PillarReport is the immutable per-pillar entry of a report.
type PillarReport struct {
	Key        PillarKey `json:"-"`
	Name       string    `json:"name"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	Percentage float64   `json:"percentage"`
	Evidence   Evidence  `json:"details"`
	Tier       Tier      `json:"tier"`
}

// NewPillarReport builds a PillarReport from a pillar's result.
func NewPillarReport(key PillarKey, name string, tier Tier, result *ScoreResult) PillarReport {
	return PillarReport{
		Key:        key,
		Name:       name,
		Score:      result.Score,
		MaxScore:   result.MaxScore,
		Percentage: Percentage(result.Score, result.MaxScore),
		Evidence:   result.Evidence,
		Tier:       tier,
	}
}

// Percentage returns round(score/max*100, 1), or 0 when max is not positive.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return RoundTo(score/maxScore*100, 1)
}

// RoundTo rounds v to the given number of decimal places (half away from zero).
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
