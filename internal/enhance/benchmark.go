package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

const (
	// DefaultNeighbors is how many corpus documents a benchmark compares against.
	DefaultNeighbors = 10
	// maxEmbedRunes bounds the text sent to the embedding model.
	maxEmbedRunes = 8000
)

// PillarGap is how far a pillar trails the corpus median.
type PillarGap struct {
	Pillar     types.PillarKey `json:"pillar"`
	Percentage float64         `json:"percentage"`
	Median     float64         `json:"median"`
	Gap        float64         `json:"gap"`
}

// Benchmark compares one report with its corpus neighbours.
type Benchmark struct {
	NeighborCount    int         `json:"neighbor_count"`
	Percentile       float64     `json:"percentile"`
	MedianPercentage float64     `json:"median_percentage"`
	Gaps             []PillarGap `json:"gaps"`
}

// Benchmarker prepares uniqueness inputs and compares reports with a corpus.
type Benchmarker struct {
	searcher VectorSearcher
	k        int
	logger   *slog.Logger
}

// NewBenchmarker returns a Benchmarker querying k neighbours (DefaultNeighbors when k <= 0).
func NewBenchmarker(searcher VectorSearcher, k int, logger *slog.Logger) *Benchmarker {
	if k <= 0 {
		k = DefaultNeighbors
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Benchmarker{searcher: searcher, k: k, logger: logger}
}

// PrepareContext embeds content and fills pc.Embedding and pc.Neighbors from
// pc.CorpusID. The neighbours found are returned for a later Compare.
func (b *Benchmarker) PrepareContext(ctx context.Context, content string, pc *pillars.Context) ([]Neighbor, error) {
	if b == nil || b.searcher == nil {
		return nil, ErrNoSearcher
	}
	if pc == nil {
		return nil, fmt.Errorf("nil pillar context")
	}
	if pc.CorpusID == "" {
		return nil, fmt.Errorf("corpus id is required for benchmarking")
	}

	doc := pc.Document
	if doc == nil {
		doc = extract.Parse(content)
	}
	vec, err := b.searcher.Embed(ctx, llm.Truncate(doc.Text, maxEmbedRunes))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	neighbors, err := b.searcher.Query(ctx, pc.CorpusID, vec, b.k)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus %s: %w", pc.CorpusID, err)
	}

	pc.Embedding = vec
	pc.Neighbors = make([][]float64, 0, len(neighbors))
	for _, n := range neighbors {
		pc.Neighbors = append(pc.Neighbors, n.Vector)
	}
	b.logger.Debug("benchmark context prepared",
		slog.String("corpus_id", pc.CorpusID),
		slog.Int("neighbors", len(neighbors)),
		slog.Int("dimensions", len(vec)))
	return neighbors, nil
}

// Compare ranks report against neighbors. Percentile counts neighbours scoring
// below the report plus half of the ties. Gaps lists pillars below the
// neighbour median, largest gap first.
func (b *Benchmarker) Compare(report *types.GeoScoreReport, neighbors []Neighbor) Benchmark {
	out := Benchmark{NeighborCount: len(neighbors), Gaps: []PillarGap{}}
	if report == nil || len(neighbors) == 0 {
		return out
	}

	below, ties := 0, 0
	overall := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		overall = append(overall, n.Percentage)
		switch {
		case n.Percentage < report.Percentage:
			below++
		case n.Percentage == report.Percentage:
			ties++
		}
	}
	out.Percentile = types.RoundTo((float64(below)+float64(ties)/2)/float64(len(neighbors))*100, 1)
	out.MedianPercentage = types.RoundTo(median(overall), 1)

	for key, p := range report.Pillars {
		var values []float64
		for _, n := range neighbors {
			if v, ok := n.Pillars[key]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		med := median(values)
		if p.Percentage < med {
			out.Gaps = append(out.Gaps, PillarGap{
				Pillar:     key,
				Percentage: p.Percentage,
				Median:     types.RoundTo(med, 1),
				Gap:        types.RoundTo(med-p.Percentage, 1),
			})
		}
	}
	sort.Slice(out.Gaps, func(i, j int) bool {
		if out.Gaps[i].Gap != out.Gaps[j].Gap {
			return out.Gaps[i].Gap > out.Gaps[j].Gap
		}
		return out.Gaps[i].Pillar < out.Gaps[j].Pillar
	})
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
