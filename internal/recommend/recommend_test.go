package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

func report(key types.PillarKey, pct float64, ev types.Evidence) types.PillarReport {
	return types.PillarReport{
		Key:        key,
		Name:       string(key),
		Score:      pct / 10,
		MaxScore:   10,
		Percentage: pct,
		Evidence:   ev,
		Tier:       types.TierFree,
	}
}

func TestBuild_ThresholdBoundary(t *testing.T) {
	recs := Build([]types.PillarReport{
		report(pillars.KeyStructure, 70.0, types.Evidence{}),
		report(pillars.KeyReadability, 69.9, types.Evidence{}),
	})
	require.Len(t, recs, 1)
	assert.Equal(t, pillars.KeyReadability, recs[0].Pillar)
	assert.Equal(t, types.PriorityLow, recs[0].Priority)
	assert.Equal(t, 69.9, recs[0].CurrentScore)
}

func TestBuild_PriorityOrderStable(t *testing.T) {
	recs := Build([]types.PillarReport{
		report(pillars.KeyStructure, 60, nil),
		report(pillars.KeyReadability, 50, nil),
		report(pillars.KeyConfidence, 10, nil),
		report(pillars.KeyDefinitions, 45, nil),
		report(pillars.KeyFreshness, 20, nil),
	})
	require.Len(t, recs, 5)

	var keys []types.PillarKey
	for _, r := range recs {
		keys = append(keys, r.Pillar)
		assert.NotEmpty(t, r.Actions)
		assert.Equal(t, types.TierFree, r.Tier)
	}
	assert.Equal(t, []types.PillarKey{
		pillars.KeyConfidence, pillars.KeyFreshness,
		pillars.KeyReadability, pillars.KeyDefinitions,
		pillars.KeyStructure,
	}, keys)
	assert.Equal(t, types.PriorityHigh, recs[0].Priority)
	assert.Equal(t, types.PriorityMedium, recs[2].Priority)
}

func TestBuild_NoneBelowThreshold(t *testing.T) {
	recs := Build([]types.PillarReport{report(pillars.KeyDepth, 100, nil)})
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestActions_Structure(t *testing.T) {
	actions := Actions(report(pillars.KeyStructure, 30, types.Evidence{
		"h1_count":         0,
		"violations":       []string{"Heading hierarchy skips from h1 to h3"},
		"subheading_count": 1,
		"list_count":       2,
		"table_count":      1,
	}))
	assert.Equal(t, []string{
		"Add a single H1 heading that names the page topic",
		"Fix the heading order: Heading hierarchy skips from h1 to h3",
		"Break the content into sections with descriptive H2 and H3 subheadings",
	}, actions)
}

func TestActions_BotAccessNamesBlockedBots(t *testing.T) {
	actions := Actions(report(pillars.KeyBotAccess, 50, types.Evidence{
		"blocked_bots":      []string{"GPTBot", "CCBot"},
		"meta_robots_score": 2.0,
	}))
	assert.Equal(t, []string{"Allow AI crawlers in robots.txt: GPTBot, CCBot"}, actions)
}

func TestActions_MachineReadabilityLLMSTxt(t *testing.T) {
	actions := Actions(report(pillars.KeyMachineReadability, 40, types.Evidence{
		"has_structured_data": true,
		"valuable_types":      []string{"Article"},
		"missing_metadata":    []string{"canonical"},
		"llms_txt": types.Evidence{
			"found":          true,
			"missing_checks": []string{"page_listing"},
		},
	}))
	assert.Equal(t, []string{
		"Add missing page metadata: canonical",
		"Improve llms.txt by adding: page_listing",
	}, actions)
}

func TestActions_FallbackWhenRuleFindsNothing(t *testing.T) {
	actions := Actions(report(pillars.KeyUniqueness, 50, types.Evidence{
		"max_similarity":  0.5,
		"mean_similarity": 0.4,
	}))
	assert.Equal(t, []string{fallbacks[pillars.KeyUniqueness]}, actions)
}

func TestActions_UnknownPillar(t *testing.T) {
	r := report("custom", 10, nil)
	r.Name = "Custom Signal"
	assert.Equal(t, []string{"Strengthen the Custom Signal signals on this page"}, Actions(r))
}

func TestActions_Capped(t *testing.T) {
	actions := Actions(report(pillars.KeyEntity, 0, types.Evidence{"entity": "Acme"}))
	assert.Len(t, actions, maxActions)
	assert.Equal(t, `Include "Acme" in the page title`, actions[0])
}

func TestResources_EveryPillarHasOne(t *testing.T) {
	for _, s := range pillars.All(pillars.Network{}) {
		res := Resources(s.Key())
		assert.NotEmpty(t, res, s.Key())
		for _, r := range res {
			assert.Contains(t, r.URL, "https://")
		}
	}
}

func TestResources_ReturnsCopy(t *testing.T) {
	res := Resources(pillars.KeyStructure)
	res[0].Title = "changed"
	assert.NotEqual(t, "changed", Resources(pillars.KeyStructure)[0].Title)
}
