package scoring

import (
	"fmt"
	"sort"

	"github.com/jonathan/geo-scorer/internal/types"
)

const summaryPicks = 2

// Summarize ranks the free-tier reports by percentage, so the summary reads the
// same whatever tier was scored. reports must be in registry order; ties keep it.
func Summarize(reports []types.PillarReport, percentage float64, grade string) types.Summary {
	free := make([]types.PillarReport, 0, len(reports))
	for _, r := range reports {
		if r.Tier == types.TierFree {
			free = append(free, r)
		}
	}

	sum := types.Summary{
		Overall:    overallText(percentage, grade),
		Strengths:  []string{},
		Weaknesses: []string{},
	}
	if len(free) == 0 {
		return sum
	}

	best := append([]types.PillarReport(nil), free...)
	sort.SliceStable(best, func(i, j int) bool { return best[i].Percentage > best[j].Percentage })
	worst := append([]types.PillarReport(nil), free...)
	sort.SliceStable(worst, func(i, j int) bool { return worst[i].Percentage < worst[j].Percentage })

	for i := 0; i < summaryPicks && i < len(best); i++ {
		sum.Strengths = append(sum.Strengths, best[i].Name)
	}
	for i := 0; i < summaryPicks && i < len(worst); i++ {
		sum.Weaknesses = append(sum.Weaknesses, worst[i].Name)
	}
	sum.FocusArea = worst[0].Name
	return sum
}

func overallText(percentage float64, grade string) string {
	var verdict string
	switch {
	case percentage >= 80:
		verdict = "excellent AI visibility; the content is well prepared for generative engines"
	case percentage >= 60:
		verdict = "good AI visibility with clear room for improvement"
	case percentage >= 40:
		verdict = "fair AI visibility; several pillars need attention"
	default:
		verdict = "poor AI visibility; significant optimization is needed"
	}
	return fmt.Sprintf("Grade %s (%.1f%%): %s.", grade, percentage, verdict)
}
