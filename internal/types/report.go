package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Priority ranks recommendations. Lower Order() sorts first.
type Priority string

// Priority levels derived from a pillar's percentage.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation thresholds (percentages).
const (
	RecommendationThreshold = 70.0
	highPriorityBelow       = 40.0
	mediumPriorityBelow     = 55.0
)

// PriorityFor maps a pillar percentage to a priority: <40 high, <55 medium, else low.
func PriorityFor(percentage float64) Priority {
	switch {
	case percentage < highPriorityBelow:
		return PriorityHigh
	case percentage < mediumPriorityBelow:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Order returns the sort position of the priority.
func (p Priority) Order() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Resource is a reference link attached to a recommendation.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Recommendation is the action list for one under-performing pillar.
type Recommendation struct {
	Pillar       PillarKey  `json:"pillar"`
	CurrentScore float64    `json:"current_score"`
	Priority     Priority   `json:"priority"`
	Actions      []string   `json:"actions"`
	Tier         Tier       `json:"tier"`
	Resources    []Resource `json:"resources"`
}

// RecommendationList keeps recommendations in priority order. It serializes as a
// JSON object keyed by pillar whose key order is the list order.
type RecommendationList []Recommendation

// MarshalJSON writes the list as an ordered object.
func (l RecommendationList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(rec.Pillar))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an ordered object back into a list, preserving key order.
func (l *RecommendationList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("recommendations: expected object, got %v", tok)
	}
	out := RecommendationList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("recommendations: expected string key, got %v", keyTok)
		}
		var rec Recommendation
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("recommendations: failed to decode %s: %w", key, err)
		}
		if rec.Pillar == "" {
			rec.Pillar = PillarKey(key)
		}
		out = append(out, rec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

// Summary is the human readable digest of a report.
type Summary struct {
	Overall    string   `json:"overall"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	FocusArea  string   `json:"focus_area"`
}

// GeoScoreReport is the full output of one scoring pass. It is built once and never
// mutated afterwards.
type GeoScoreReport struct {
	Score           float64                    `json:"score"`
	MaxScore        float64                    `json:"max_score"`
	Percentage      float64                    `json:"percentage"`
	Grade           string                     `json:"grade"`
	Pillars         map[PillarKey]PillarReport `json:"pillars"`
	Recommendations RecommendationList         `json:"recommendations"`
	Summary         Summary                    `json:"summary"`
	ScoredAt        time.Time                  `json:"scored_at"`
}

// Pillar returns the report for key and whether it was active.
func (r *GeoScoreReport) Pillar(key PillarKey) (PillarReport, bool) {
	p, ok := r.Pillars[key]
	return p, ok
}

// QuickPillar is the reduced per-pillar entry of a QuickScore.
type QuickPillar struct {
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
	Tier  Tier    `json:"tier"`
}

// QuickScore is the reduced-cost output: aggregation without evidence or recommendations.
type QuickScore struct {
	Score      float64                   `json:"score"`
	Percentage float64                   `json:"percentage"`
	Grade      string                    `json:"grade"`
	Pillars    map[PillarKey]QuickPillar `json:"pillars"`
}
