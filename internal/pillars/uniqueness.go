package pillars

import (
	"context"
	"math"

	"github.com/jonathan/geo-scorer/internal/types"
)

// Uniqueness scores how far the content's embedding sits from its corpus
// neighbours. Vectors are supplied by the caller; the pillar performs no I/O.
type Uniqueness struct{ base }

// NewUniqueness returns the corpus uniqueness pillar.
func NewUniqueness() *Uniqueness {
	return &Uniqueness{base{key: KeyUniqueness, name: "Corpus Uniqueness", maxScore: 10}}
}

// Score implements Scorer.
func (p *Uniqueness) Score(_ context.Context, _ string, pc *Context) *types.ScoreResult {
	if pc == nil || len(pc.Embedding) == 0 {
		return finalize(0, p.maxScore, types.Evidence{"reason": "no embedding provided"})
	}
	if len(pc.Neighbors) == 0 {
		return finalize(0, p.maxScore, types.Evidence{"reason": "no corpus neighbors provided", "corpus_id": pc.CorpusID})
	}

	similarities := make([]float64, 0, len(pc.Neighbors))
	skipped := 0
	for _, n := range pc.Neighbors {
		sim, ok := CosineSimilarity(pc.Embedding, n)
		if !ok {
			skipped++
			continue
		}
		similarities = append(similarities, sim)
	}
	if len(similarities) == 0 {
		return finalize(0, p.maxScore, types.Evidence{
			"reason":            "no comparable neighbors",
			"skipped_neighbors": skipped,
			"corpus_id":         pc.CorpusID,
		})
	}

	maxSim, sum := -1.0, 0.0
	for _, s := range similarities {
		maxSim = math.Max(maxSim, s)
		sum += s
	}
	mean := sum / float64(len(similarities))

	score := 0.0
	switch {
	case maxSim <= 0.80:
		score += 6
	case maxSim <= 0.88:
		score += 4
	case maxSim <= 0.94:
		score += 2
	}
	switch {
	case mean <= 0.75:
		score += 4
	case mean <= 0.85:
		score += 2
	}

	return finalize(score, p.maxScore, types.Evidence{
		"corpus_id":         pc.CorpusID,
		"neighbor_count":    len(similarities),
		"skipped_neighbors": skipped,
		"max_similarity":    types.RoundTo(maxSim, 4),
		"mean_similarity":   types.RoundTo(mean, 4),
	})
}

// CosineSimilarity returns the cosine of the angle between a and b. It reports
// false for mismatched dimensions or zero vectors.
func CosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
