package pillars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidence_Signals(t *testing.T) {
	content := "Acme is the leading widget maker in Europe. Our widgets reduce energy costs by 40 percent. " +
		"The answer is simple and clearly proven. Might this work?"

	res := NewConfidence().Score(context.Background(), content, nil)

	assert.Equal(t, 4, res.Evidence.Int("sentence_count"))
	assert.Equal(t, 3, res.Evidence.Int("declarative_count"))
	assert.Equal(t, 1, res.Evidence.Int("question_count"))
	assert.Equal(t, 1, res.Evidence.Int("hedge_count"))
	assert.Equal(t, 3, res.Evidence.Int("confidence_count"))
	assert.Equal(t, 2, res.Evidence.Int("quotable_count"))
	assert.True(t, res.Evidence.Bool("starts_with_answer"))
	// declarative 5 + hedging 0 + confidence 1.5 + quotable 1 + directness 1.5
	assert.Equal(t, 9.0, res.Score)
}

func TestConfidence_HedgedOpening(t *testing.T) {
	content := "In this article we might look at widgets. It seems they could possibly help."
	res := NewConfidence().Score(context.Background(), content, nil)

	assert.False(t, res.Evidence.Bool("starts_with_answer"))
	assert.Greater(t, res.Evidence.Float("hedge_density"), 2.0)
}

func TestConfidence_DirectElementsCapped(t *testing.T) {
	content := "<ul><li>a</li></ul><ol><li>b</li></ol><table><tr><td>c</td></tr></table><b>x</b><b>y</b>"
	res := NewConfidence().Score(context.Background(), content, nil)

	assert.Equal(t, 1.5, res.Evidence.Float("directness_score"))
}

func TestConfidence_Empty(t *testing.T) {
	res := NewConfidence().Score(context.Background(), "", nil)
	assert.Equal(t, 0.0, res.Score)
}
