package pillars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructure_HierarchyViolation(t *testing.T) {
	res := NewStructure().Score(context.Background(), "<h1>Title</h1><p>Intro.</p><h3>Deep</h3><p>Body.</p>", nil)

	assert.False(t, res.Evidence.Bool("properly_nested"))
	violations := res.Evidence.Strings("violations")
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "h1 to h3")
	// h1 3 + single violation 1 + one subheading 1
	assert.Equal(t, 5.0, res.Score)
}

func TestStructure_FullCredit(t *testing.T) {
	content := `<h1>Guide</h1>
<h2>One</h2><ul><li>a</li></ul>
<h2>Two</h2><ol><li>b</li></ol>
<h3>Two point one</h3><ul><li>c</li></ul>
<h3>Two point two</h3><table><tr><td>x</td></tr></table>`

	res := NewStructure().Score(context.Background(), content, nil)

	assert.Equal(t, 15.0, res.Score)
	assert.True(t, res.Evidence.Bool("properly_nested"))
	assert.Equal(t, 1, res.Evidence.Int("h1_count"))
	assert.Equal(t, []int{1, 2, 3}, res.Evidence["levels_present"])
}

func TestStructure_Ladders(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"no headings", "<p>Just text.</p>", 0},
		{"multiple h1", "<h1>A</h1><h1>B</h1>", 1 + 2},
		{"single level nested", "<h2>A</h2><h2>B</h2>", 2 + 2},
		{"two violations", "<h1>A</h1><h3>B</h3><h5>C</h5>", 3 + 0 + 1},
		{"one list", "<ul><li>x</li></ul>", 1.5},
		{"two lists", "<ul><li>x</li></ul><ol><li>y</li></ol>", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewStructure().Score(context.Background(), tt.content, nil)
			assert.Equal(t, tt.want, res.Score)
		})
	}
}
