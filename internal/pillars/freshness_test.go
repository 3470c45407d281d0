package pillars

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDates(t *testing.T) {
	dates := FindDates("Published 2024-01-15, revised 3 March 2025, see May 1, 2025 and December 2030.")
	require.Len(t, dates, 4)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), dates[2])
	assert.Equal(t, time.Date(2030, 12, 1, 0, 0, 0, 0, time.UTC), dates[3])
}

func TestFindDates_InvalidSkipped(t *testing.T) {
	assert.Empty(t, FindDates("2024-02-30 and February 30, 2024 and 2024-13-01"))
}

func TestFreshness_Score(t *testing.T) {
	content := `<p>Last updated: May 1, 2025.</p>
<p>First published 2024-01-15 and revised 3 March 2025. Next review December 2030.</p>
<time datetime="2024-01-15">Jan</time>`
	pc := &Context{Now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}

	res := NewFreshness().Score(context.Background(), content, pc)

	// recent 4 + published 2 + last updated 2 + dated references 1
	assert.Equal(t, 9.0, res.Score)
	assert.Equal(t, 31, res.Evidence.Int("age_days"))
	assert.Equal(t, 1, res.Evidence.Int("future_date_count"))
	assert.Equal(t, "2025-05-01", res.Evidence.String("most_recent_date"))
}

func TestFreshness_AgeLadder(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		date string
		want float64
	}{
		{"2024-12-01", 4},
		{"2024-08-01", 3},
		{"2024-03-01", 2},
		{"2023-06-01", 1},
		{"2020-01-01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			res := NewFreshness().Score(context.Background(), "Written on "+tt.date+".", &Context{Now: now})
			assert.Equal(t, tt.want, res.Score)
		})
	}
}
