package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request ScoreRequest
		errMsg  string
	}{
		{name: "content only", request: ScoreRequest{Content: "<h1>Hi</h1>"}},
		{name: "url only", request: ScoreRequest{URL: "https://example.com/page"}},
		{name: "with tier", request: ScoreRequest{Content: "x", Tier: "agency"}},
		{name: "neither", request: ScoreRequest{}, errMsg: "required_without"},
		{name: "bad url", request: ScoreRequest{URL: "not a url"}, errMsg: "url"},
		{name: "non http url", request: ScoreRequest{URL: "ftp://example.com"}, errMsg: "startswith"},
		{name: "unknown tier", request: ScoreRequest{Content: "x", Tier: "gold"}, errMsg: "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestScoreRequest_NormalizeAndTier(t *testing.T) {
	r := ScoreRequest{Content: "x", Tier: "  PRO "}
	r.Normalize()
	require.NoError(t, r.Validate())

	tier, err := r.RequestedTier()
	require.NoError(t, err)
	assert.Equal(t, TierPro, tier)

	empty := ScoreRequest{Content: "x"}
	tier, err = empty.RequestedTier()
	require.NoError(t, err)
	assert.Equal(t, TierFree, tier)
}

func TestPartialScoreRequest(t *testing.T) {
	r := PartialScoreRequest{Content: "x", Pillars: []string{" Structure", "faq"}}
	require.NoError(t, r.Validate())
	assert.Equal(t, []PillarKey{"structure", "faq"}, r.Keys())

	err := (&PartialScoreRequest{Content: "x"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pillars")

	err = (&PartialScoreRequest{Content: "x", Pillars: []string{""}}).Validate()
	require.Error(t, err)
}
