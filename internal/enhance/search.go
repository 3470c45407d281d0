package enhance

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

// Neighbor is a document from a benchmark corpus.
type Neighbor struct {
	ID         string                        `json:"id"`
	URL        string                        `json:"url,omitempty"`
	Vector     []float64                     `json:"-"`
	Similarity float64                       `json:"similarity"`
	Percentage float64                       `json:"percentage"`
	Pillars    map[types.PillarKey]float64 `json:"pillars,omitempty"`
}

// Embedder turns text into a vector. llm.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorSearcher embeds text and finds the k nearest documents of a corpus.
type VectorSearcher interface {
	Embedder
	Query(ctx context.Context, corpusID string, vector []float64, k int) ([]Neighbor, error)
}

// MemoryIndex is an in-process VectorSearcher over documents added with Add.
type MemoryIndex struct {
	embedder Embedder

	mu      sync.RWMutex
	corpora map[string][]Neighbor
}

// NewMemoryIndex returns an empty index that embeds with embedder.
func NewMemoryIndex(embedder Embedder) *MemoryIndex {
	return &MemoryIndex{embedder: embedder, corpora: map[string][]Neighbor{}}
}

// Embed implements Embedder.
func (m *MemoryIndex) Embed(ctx context.Context, text string) ([]float64, error) {
	return m.embedder.Embed(ctx, text)
}

// Add stores n in corpusID. A neighbour with the same ID is replaced.
func (m *MemoryIndex) Add(corpusID string, n Neighbor) error {
	if len(n.Vector) == 0 {
		return fmt.Errorf("neighbor %q has no vector", n.ID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.corpora[corpusID]
	for i := range docs {
		if docs[i].ID == n.ID {
			docs[i] = n
			return nil
		}
	}
	m.corpora[corpusID] = append(docs, n)
	return nil
}

// AddText embeds text and stores it along with its report percentages.
func (m *MemoryIndex) AddText(ctx context.Context, corpusID, id, text string, report *types.GeoScoreReport) error {
	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed %s: %w", id, err)
	}
	n := Neighbor{ID: id, Vector: vec}
	if report != nil {
		n.Percentage = report.Percentage
		n.Pillars = make(map[types.PillarKey]float64, len(report.Pillars))
		for key, p := range report.Pillars {
			n.Pillars[key] = p.Percentage
		}
	}
	return m.Add(corpusID, n)
}

// Len returns the number of documents in corpusID.
func (m *MemoryIndex) Len(corpusID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.corpora[corpusID])
}

// Query implements VectorSearcher. Vectors of a different dimension are skipped.
func (m *MemoryIndex) Query(_ context.Context, corpusID string, vector []float64, k int) ([]Neighbor, error) {
	m.mu.RLock()
	docs := m.corpora[corpusID]
	m.mu.RUnlock()
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	out := make([]Neighbor, 0, len(docs))
	for _, d := range docs {
		sim, ok := pillars.CosineSimilarity(vector, d.Vector)
		if !ok {
			continue
		}
		d.Similarity = types.RoundTo(sim, 4)
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}
