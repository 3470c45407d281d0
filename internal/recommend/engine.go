// Package recommend turns under-performing pillar results into prioritized,
// human-readable actions.
package recommend

import (
	"fmt"
	"sort"

	"github.com/jonathan/geo-scorer/internal/types"
)

// maxActions caps the actions emitted for one pillar.
const maxActions = 5

// Build returns a recommendation for every pillar scoring below
// types.RecommendationThreshold. reports must be in registry order: that order
// breaks ties between equal priorities.
func Build(reports []types.PillarReport) types.RecommendationList {
	recs := make(types.RecommendationList, 0)
	for _, r := range reports {
		if r.Percentage >= types.RecommendationThreshold {
			continue
		}
		recs = append(recs, types.Recommendation{
			Pillar:       r.Key,
			CurrentScore: r.Percentage,
			Priority:     types.PriorityFor(r.Percentage),
			Actions:      Actions(r),
			Tier:         r.Tier,
			Resources:    Resources(r.Key),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Order() < recs[j].Priority.Order()
	})
	return recs
}

// Actions runs the pillar's rule over its evidence. A pillar without a rule, or
// whose rule finds nothing specific, gets its generic fallback action.
func Actions(r types.PillarReport) []string {
	ev := r.Evidence
	if ev == nil {
		ev = types.Evidence{}
	}
	var actions []string
	if rule, ok := rules[r.Key]; ok {
		actions = rule(ev)
	}
	if len(actions) == 0 {
		if fb, ok := fallbacks[r.Key]; ok {
			actions = []string{fb}
		} else {
			actions = []string{fmt.Sprintf("Strengthen the %s signals on this page", r.Name)}
		}
	}
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	return actions
}
