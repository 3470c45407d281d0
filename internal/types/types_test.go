package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tier, err := ParseTier(" Agency ")
	require.NoError(t, err)
	assert.Equal(t, TierAgency, tier)

	_, err = ParseTier("enterprise")
	assert.Error(t, err)
}

func TestTier_Includes(t *testing.T) {
	assert.True(t, TierAgency.Includes(TierPro))
	assert.True(t, TierPro.Includes(TierFree))
	assert.True(t, TierFree.Includes(TierFree))
	assert.False(t, TierFree.Includes(TierPro))
	assert.False(t, Tier("bogus").Includes(TierFree))
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want Priority
	}{
		{0, PriorityHigh},
		{39.9, PriorityHigh},
		{40, PriorityMedium},
		{54.9, PriorityMedium},
		{55, PriorityLow},
		{69.9, PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriorityFor(tt.pct), "pct=%v", tt.pct)
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 69.9, Percentage(6.99, 10))
	assert.Equal(t, 70.0, Percentage(7, 10))
	assert.Equal(t, 33.3, Percentage(5, 15))
	assert.Equal(t, 0.0, Percentage(3, 0))
}

func TestEvidence_Accessors(t *testing.T) {
	ev := Evidence{
		"count":  3,
		"ratio":  0.5,
		"flag":   true,
		"name":   "x",
		"list":   []any{"a", 1, "b"},
		"nested": map[string]any{"inner": 2.0},
	}

	assert.Equal(t, 3, ev.Int("count"))
	assert.Equal(t, 3.0, ev.Float("count"))
	assert.Equal(t, 0.5, ev.Float("ratio"))
	assert.True(t, ev.Bool("flag"))
	assert.Equal(t, "x", ev.String("name"))
	assert.Equal(t, []string{"a", "b"}, ev.Strings("list"))
	assert.Equal(t, 2, ev.Map("nested").Int("inner"))
	assert.Equal(t, 0, ev.Int("missing"))
	assert.Empty(t, ev.Map("missing"))
}

func TestRecommendationList_PreservesOrder(t *testing.T) {
	list := RecommendationList{
		{Pillar: "structure", Priority: PriorityHigh, Actions: []string{"a"}, Resources: []Resource{}},
		{Pillar: "authority", Priority: PriorityLow, Actions: []string{"b"}, Resources: []Resource{}},
	}

	data, err := json.Marshal(list)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"structure":\{.*\},"authority":\{.*\}\}$`, string(data))

	var decoded RecommendationList
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, PillarKey("structure"), decoded[0].Pillar)
	assert.Equal(t, PillarKey("authority"), decoded[1].Pillar)
}

func TestRecommendationList_Empty(t *testing.T) {
	data, err := json.Marshal(RecommendationList{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	var nilList RecommendationList
	data, err = json.Marshal(nilList)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
