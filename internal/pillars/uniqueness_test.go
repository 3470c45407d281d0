package pillars

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	sim, ok := CosineSimilarity([]float64{1, 0}, []float64{1, 0})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, sim, 1e-12)

	sim, ok = CosineSimilarity([]float64{1, 0}, []float64{0, 1})
	assert.True(t, ok)
	assert.InDelta(t, 0.0, sim, 1e-12)

	_, ok = CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0})
	assert.False(t, ok)

	_, ok = CosineSimilarity([]float64{0, 0}, []float64{1, 0})
	assert.False(t, ok)
}

func TestUniqueness_Score(t *testing.T) {
	tests := []struct {
		name      string
		neighbors [][]float64
		want      float64
	}{
		{"distinct corpus", [][]float64{{0, 1}, {1, 1}}, 10},
		{"similar neighbour", [][]float64{{0.83, math.Sqrt(1 - 0.83*0.83)}}, 6},
		{"near duplicate", [][]float64{{1, 0.01}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := &Context{Embedding: []float64{1, 0}, Neighbors: tt.neighbors}
			res := NewUniqueness().Score(context.Background(), "", pc)
			assert.Equal(t, tt.want, res.Score)
		})
	}
}

func TestUniqueness_MissingInputs(t *testing.T) {
	res := NewUniqueness().Score(context.Background(), "", nil)
	assert.Equal(t, "no embedding provided", res.Evidence.String("reason"))

	res = NewUniqueness().Score(context.Background(), "", &Context{Embedding: []float64{1}})
	assert.Equal(t, "no corpus neighbors provided", res.Evidence.String("reason"))

	res = NewUniqueness().Score(context.Background(), "", &Context{Embedding: []float64{1, 0}, Neighbors: [][]float64{{1, 0, 0}}})
	assert.Equal(t, "no comparable neighbors", res.Evidence.String("reason"))
	assert.Equal(t, 1, res.Evidence.Int("skipped_neighbors"))
	assert.Equal(t, 0.0, res.Score)
}
