package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-scorer/internal/db"
	"github.com/jonathan/geo-scorer/internal/enhance"
	"github.com/jonathan/geo-scorer/internal/ingestion"
	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/scoring"
	"github.com/jonathan/geo-scorer/internal/types"
)

const samplePage = `<html><head><title>Vector Search Guide</title></head><body>
<h1>Vector Search</h1>
<p>Vector search is a retrieval method that compares embeddings instead of keywords.</p>
<h2>How it works</h2>
<p>Documents are embedded once and queried with cosine similarity.</p>
</body></html>`

type memoryStore struct {
	mu      sync.Mutex
	reports map[string]*db.ReportRecord
	saves   int
	getErr  error
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: map[string]*db.ReportRecord{}}
}

func (m *memoryStore) GetReport(_ context.Context, fingerprint string) (*db.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.reports[fingerprint], nil
}

func (m *memoryStore) SaveReport(_ context.Context, in *db.ReportInput) (*db.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	raw, err := json.Marshal(in.Report)
	if err != nil {
		return nil, err
	}
	m.saves++
	rec := &db.ReportRecord{Fingerprint: in.Fingerprint, Tier: string(in.Tier), ContentHash: in.ContentHash, ReportJSON: raw}
	m.reports[in.Fingerprint] = rec
	return rec, nil
}

type vectorEmbedder struct{}

func (vectorEmbedder) Embed(context.Context, string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

type replyClient struct{ reply string }

func (c replyClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return c.reply, nil
}
func (c replyClient) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return c.reply, nil
}
func (replyClient) Embed(context.Context, string) ([]float64, error) { return nil, errors.New("unused") }
func (replyClient) GetModel(llm.ModelTier) string                   { return "fake" }
func (replyClient) Close() error                                    { return nil }

func testEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	engine, err := scoring.NewBuilder().
		WithDefaults(pillars.Network{}).
		WithClock(func() time.Time { return fixed }).
		Build()
	require.NoError(t, err)
	return engine
}

func TestNewRunner_RequiresEngine(t *testing.T) {
	_, err := NewRunner(Options{})
	assert.Error(t, err)
}

func TestRun_ContentAndCache(t *testing.T) {
	store := newMemoryStore()
	runner, err := NewRunner(Options{Engine: testEngine(t), Store: store})
	require.NoError(t, err)

	var steps []string
	req := Request{
		Content:    samplePage,
		Tier:       types.TierPro,
		Context:    &pillars.Context{Entity: "Vector Search"},
		OnProgress: func(e ProgressEvent) { steps = append(steps, e.Step+":"+e.Category) },
	}

	first, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, scoring.Fingerprint(samplePage, types.TierPro, &pillars.Context{Entity: "Vector Search"}), first.Fingerprint)
	assert.Len(t, first.Report.Pillars, 10)
	assert.Equal(t, 1, store.saves)
	assert.Contains(t, steps, "score:complete")
	assert.Contains(t, steps, "save:complete")
	assert.NotNil(t, first.Source)
	assert.Equal(t, db.HashContent(samplePage), first.Source.Hash)

	second, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, 1, store.saves)

	a, err := json.Marshal(first.Report)
	require.NoError(t, err)
	b, err := json.Marshal(second.Report)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	req.SkipCache = true
	third, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, store.saves)
}

func TestRun_TierChangesFingerprint(t *testing.T) {
	runner, err := NewRunner(Options{Engine: testEngine(t)})
	require.NoError(t, err)

	free, err := runner.Run(context.Background(), Request{Content: samplePage})
	require.NoError(t, err)
	agency, err := runner.Run(context.Background(), Request{Content: samplePage, Tier: types.TierAgency})
	require.NoError(t, err)

	assert.NotEqual(t, free.Fingerprint, agency.Fingerprint)
	assert.Len(t, free.Report.Pillars, 8)
	assert.Len(t, agency.Report.Pillars, 13)
}

func TestRun_VectorsChangeCacheKey(t *testing.T) {
	store := newMemoryStore()
	engine := testEngine(t)
	runner, err := NewRunner(Options{Engine: engine, Store: store})
	require.NoError(t, err)

	bare, err := runner.Run(context.Background(), Request{
		Content: samplePage,
		Tier:    types.TierAgency,
		Context: &pillars.Context{CorpusID: "c1"},
	})
	require.NoError(t, err)
	uniq, _ := bare.Report.Pillar(pillars.KeyUniqueness)
	assert.Equal(t, "no embedding provided", uniq.Evidence.String("reason"))

	pc := &pillars.Context{CorpusID: "c1", Embedding: []float64{1, 0}, Neighbors: [][]float64{{0, 1}}}
	vectors, err := runner.Run(context.Background(), Request{Content: samplePage, Tier: types.TierAgency, Context: pc})
	require.NoError(t, err)
	assert.False(t, vectors.Cached)
	assert.NotEqual(t, bare.Fingerprint, vectors.Fingerprint)
	assert.Equal(t, 2, store.saves)

	uniq, ok := vectors.Report.Pillar(pillars.KeyUniqueness)
	require.True(t, ok)
	assert.Equal(t, 1, uniq.Evidence.Int("neighbor_count"))
	direct, err := engine.Score(context.Background(), samplePage, pc, types.TierAgency)
	require.NoError(t, err)
	want, _ := direct.Pillar(pillars.KeyUniqueness)
	assert.Equal(t, want.Score, uniq.Score)
}

func TestRun_BenchmarkedCorpusChangeMissesCache(t *testing.T) {
	store := newMemoryStore()
	idx := enhance.NewMemoryIndex(vectorEmbedder{})
	require.NoError(t, idx.Add("docs", enhance.Neighbor{ID: "far", Vector: []float64{0, 1, 0}, Percentage: 40}))
	runner, err := NewRunner(Options{
		Engine:      testEngine(t),
		Store:       store,
		Benchmarker: enhance.NewBenchmarker(idx, 5, nil),
	})
	require.NoError(t, err)

	req := Request{Content: samplePage, Tier: types.TierAgency, Context: &pillars.Context{CorpusID: "docs"}, Benchmark: true}
	first, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	uniq, _ := first.Report.Pillar(pillars.KeyUniqueness)
	assert.Equal(t, 1, uniq.Evidence.Int("neighbor_count"))

	require.NoError(t, idx.Add("docs", enhance.Neighbor{ID: "twin", Vector: []float64{1, 0, 0}, Percentage: 90}))
	second, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
	uniq, _ = second.Report.Pillar(pillars.KeyUniqueness)
	assert.Equal(t, 2, uniq.Evidence.Int("neighbor_count"))
	assert.Equal(t, 1.0, uniq.Evidence.Float("max_similarity"))

	third, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, third.Cached)
	assert.Equal(t, second.Fingerprint, third.Fingerprint)
}

func TestRun_StoreFailuresAreNotFatal(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("db down")
	store.saveErr = errors.New("db down")
	runner, err := NewRunner(Options{Engine: testEngine(t), Store: store})
	require.NoError(t, err)

	var warnings int
	res, err := runner.Run(context.Background(), Request{
		Content: samplePage,
		OnProgress: func(e ProgressEvent) {
			if e.Category == "warning" {
				warnings++
			}
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Report)
	assert.False(t, res.Cached)
	assert.Equal(t, 1, warnings)
}

func TestRun_LoadsURL(t *testing.T) {
	var loaded string
	loader := func(_ context.Context, url string) (*ingestion.Source, error) {
		loaded = url
		return &ingestion.Source{Content: samplePage, Metadata: ingestion.NewMetadata(samplePage, url)}, nil
	}
	runner, err := NewRunner(Options{Engine: testEngine(t), Load: loader})
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), Request{URL: "https://example.com/guide"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/guide", loaded)
	assert.Equal(t, "https://example.com/guide", res.Source.URL)
	assert.Equal(t, scoring.Fingerprint(samplePage, types.TierFree, &pillars.Context{URL: "https://example.com/guide"}), res.Fingerprint)
}

func TestRun_InputErrors(t *testing.T) {
	failing := func(context.Context, string) (*ingestion.Source, error) {
		return nil, ingestion.ErrHTTPRequestFailed
	}
	runner, err := NewRunner(Options{Engine: testEngine(t), Load: failing})
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = runner.Run(context.Background(), Request{Content: "x", Tier: "gold"})
	var tierErr *scoring.UnknownTierError
	assert.ErrorAs(t, err, &tierErr)

	_, err = runner.Run(context.Background(), Request{URL: "https://example.com"})
	assert.ErrorIs(t, err, ingestion.ErrHTTPRequestFailed)
}

func TestRun_ResolveDoesNotMutateContext(t *testing.T) {
	runner, err := NewRunner(Options{Engine: testEngine(t)})
	require.NoError(t, err)

	pc := &pillars.Context{Entity: "X"}
	_, got, _, err := runner.Resolve(context.Background(), &Request{Content: "x", URL: "https://a.example", Context: pc})
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", got.URL)
	assert.Equal(t, "", pc.URL)
}

func TestRun_BenchmarkAndSuggest(t *testing.T) {
	idx := enhance.NewMemoryIndex(vectorEmbedder{})
	require.NoError(t, idx.Add("docs", enhance.Neighbor{ID: "twin", Vector: []float64{1, 0, 0}, Percentage: 10}))
	require.NoError(t, idx.Add("docs", enhance.Neighbor{ID: "far", Vector: []float64{0, 1, 0}, Percentage: 95}))

	client := replyClient{reply: `{"suggestions": []}`}
	runner, err := NewRunner(Options{
		Engine:      testEngine(t),
		Benchmarker: enhance.NewBenchmarker(idx, 5, nil),
		Suggester:   enhance.NewSuggester(client, enhance.SuggesterOptions{}),
	})
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), Request{
		Content:   samplePage,
		Tier:      types.TierAgency,
		Context:   &pillars.Context{CorpusID: "docs"},
		Benchmark: true,
		Suggest:   true,
	})
	require.NoError(t, err)

	uniq, ok := res.Report.Pillar(pillars.KeyUniqueness)
	require.True(t, ok)
	assert.Equal(t, 2, uniq.Evidence.Int("neighbor_count"))
	assert.Equal(t, 1.0, uniq.Evidence.Float("max_similarity"))

	require.NotNil(t, res.Benchmark)
	assert.Equal(t, 2, res.Benchmark.NeighborCount)
	require.NotNil(t, res.Suggestions)
}

func TestRun_BenchmarkFailureIsNotFatal(t *testing.T) {
	runner, err := NewRunner(Options{
		Engine:      testEngine(t),
		Benchmarker: enhance.NewBenchmarker(enhance.NewMemoryIndex(vectorEmbedder{}), 5, nil),
	})
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), Request{
		Content:   samplePage,
		Tier:      types.TierAgency,
		Context:   &pillars.Context{CorpusID: "missing"},
		Benchmark: true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Benchmark)
	uniq, _ := res.Report.Pillar(pillars.KeyUniqueness)
	assert.Equal(t, "no embedding provided", uniq.Evidence.String("reason"))
}
