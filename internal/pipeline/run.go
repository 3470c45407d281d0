// Package pipeline runs one end-to-end scoring request: load the page, consult
// the report cache, score, persist and optionally enhance.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/geo-scorer/internal/db"
	"github.com/jonathan/geo-scorer/internal/enhance"
	"github.com/jonathan/geo-scorer/internal/ingestion"
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/scoring"
	"github.com/jonathan/geo-scorer/internal/types"
)

// ErrNoInput is returned when a request carries neither content nor a URL.
var ErrNoInput = errors.New("content or url is required")

// Step names reported through ProgressEvent.
const (
	StepLoad      = "load"
	StepCache     = "cache"
	StepBenchmark = "benchmark"
	StepScore     = "score"
	StepSave      = "save"
	StepSuggest   = "suggest"
)

// ProgressEvent is a progress update emitted while a request runs.
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback receives progress events.
type ProgressCallback func(event ProgressEvent)

// ReportStore is the report cache; *db.DB implements it.
type ReportStore interface {
	GetReport(ctx context.Context, fingerprint string) (*db.ReportRecord, error)
	SaveReport(ctx context.Context, in *db.ReportInput) (*db.ReportRecord, error)
}

// Loader fetches a page for scoring.
type Loader func(ctx context.Context, url string) (*ingestion.Source, error)

// URLLoader returns a Loader over ingestion.FromURL.
func URLLoader(opts *ingestion.URLOptions) Loader {
	return func(ctx context.Context, url string) (*ingestion.Source, error) {
		return ingestion.FromURL(ctx, url, opts)
	}
}

// Options wires a Runner. Only Engine is required.
type Options struct {
	Engine      *scoring.Engine
	Store       ReportStore
	Load        Loader
	Benchmarker *enhance.Benchmarker
	Suggester   *enhance.Suggester
	ReportTTL   time.Duration
	Logger      *slog.Logger
}

// Runner executes scoring requests.
type Runner struct {
	engine      *scoring.Engine
	store       ReportStore
	load        Loader
	benchmarker *enhance.Benchmarker
	suggester   *enhance.Suggester
	reportTTL   time.Duration
	logger      *slog.Logger
}

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("pipeline requires a scoring engine")
	}
	r := &Runner{
		engine:      opts.Engine,
		store:       opts.Store,
		load:        opts.Load,
		benchmarker: opts.Benchmarker,
		suggester:   opts.Suggester,
		reportTTL:   opts.ReportTTL,
		logger:      opts.Logger,
	}
	if r.load == nil {
		r.load = URLLoader(nil)
	}
	if r.reportTTL <= 0 {
		r.reportTTL = db.DefaultReportCacheTTL
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Engine returns the scoring engine.
func (r *Runner) Engine() *scoring.Engine {
	return r.engine
}

// Request is one scoring request.
type Request struct {
	Content string
	URL     string
	Tier    types.Tier
	Context *pillars.Context

	Benchmark  bool // compare against Context.CorpusID
	Suggest    bool // ask the LLM for edits
	SkipCache  bool
	OnProgress ProgressCallback
}

// Result is the outcome of a Request.
type Result struct {
	Report      *types.GeoScoreReport `json:"report"`
	Fingerprint string                `json:"fingerprint"`
	Cached      bool                  `json:"cached"`
	Source      *ingestion.Metadata   `json:"source,omitempty"`
	Benchmark   *enhance.Benchmark    `json:"benchmark,omitempty"`
	Suggestions *enhance.Suggestions  `json:"suggestions,omitempty"`
}

func emit(req *Request, step, category, message string, content any) {
	if req.OnProgress != nil {
		req.OnProgress(ProgressEvent{Step: step, Category: category, Message: message, Content: content})
	}
}

// Resolve returns the content to score, loading req.URL when no content is given.
// The returned context is a copy of req.Context with URL defaulted to req.URL.
func (r *Runner) Resolve(ctx context.Context, req *Request) (string, *pillars.Context, *ingestion.Metadata, error) {
	pc := &pillars.Context{}
	if req.Context != nil {
		copied := *req.Context
		pc = &copied
	}
	if pc.URL == "" {
		pc.URL = req.URL
	}

	if req.Content != "" {
		return req.Content, pc, ingestion.NewMetadata(req.Content, req.URL), nil
	}
	if req.URL == "" {
		return "", nil, nil, ErrNoInput
	}

	emit(req, StepLoad, "progress", "Fetching "+req.URL, nil)
	src, err := r.load(ctx, req.URL)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to load %s: %w", req.URL, err)
	}
	emit(req, StepLoad, "complete", fmt.Sprintf("Loaded %d bytes", len(src.Content)), src.Metadata)
	return src.Content, pc, src.Metadata, nil
}

// Run executes req. Cache and enhancement failures are logged and skipped; only
// input, loading and scoring errors fail the request.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	tier := req.Tier
	if tier == "" {
		tier = types.TierFree
	}
	if !tier.Valid() {
		return nil, &scoring.UnknownTierError{Tier: string(tier)}
	}

	content, pc, meta, err := r.Resolve(ctx, &req)
	if err != nil {
		return nil, err
	}
	res := &Result{Source: meta}

	var neighbors []enhance.Neighbor
	if req.Benchmark && r.benchmarker != nil && pc.CorpusID != "" {
		emit(&req, StepBenchmark, "progress", "Embedding content for corpus "+pc.CorpusID, nil)
		neighbors, err = r.benchmarker.PrepareContext(ctx, content, pc)
		if err != nil {
			r.logger.Warn("benchmark preparation failed", "corpus_id", pc.CorpusID, "error", err)
			emit(&req, StepBenchmark, "warning", err.Error(), nil)
		}
	}
	// Benchmark vectors feed the uniqueness pillar, so they are part of the cache key.
	res.Fingerprint = scoring.Fingerprint(content, tier, pc)

	if r.store != nil && !req.SkipCache {
		res.Report = r.cached(ctx, res.Fingerprint)
		res.Cached = res.Report != nil
		if res.Cached {
			emit(&req, StepCache, "complete", "Using cached report", res.Fingerprint)
		}
	}

	if res.Report == nil {
		emit(&req, StepScore, "progress", fmt.Sprintf("Scoring %s tier", tier), nil)
		res.Report, err = r.engine.Score(ctx, content, pc, tier)
		if err != nil {
			return nil, err
		}
		emit(&req, StepScore, "complete", fmt.Sprintf("Grade %s", res.Report.Grade), res.Report.Percentage)
		r.save(ctx, &req, res, tier, content)
	}

	if len(neighbors) > 0 {
		b := r.benchmarker.Compare(res.Report, neighbors)
		res.Benchmark = &b
		emit(&req, StepBenchmark, "complete", fmt.Sprintf("Percentile %.1f", b.Percentile), b)
	}

	if req.Suggest && r.suggester != nil {
		emit(&req, StepSuggest, "progress", "Requesting suggestions", nil)
		s, err := r.suggester.Suggest(ctx, content, res.Report)
		if err != nil {
			r.logger.Warn("suggestions failed", "error", err)
			emit(&req, StepSuggest, "warning", err.Error(), nil)
		} else {
			res.Suggestions = s
			emit(&req, StepSuggest, "complete", fmt.Sprintf("%d suggestions", len(s.Suggestions)), nil)
		}
	}
	return res, nil
}

func (r *Runner) cached(ctx context.Context, fingerprint string) *types.GeoScoreReport {
	rec, err := r.store.GetReport(ctx, fingerprint)
	if err != nil {
		r.logger.Warn("report cache lookup failed", "fingerprint", fingerprint, "error", err)
		return nil
	}
	if rec == nil {
		return nil
	}
	report, err := rec.Report()
	if err != nil {
		r.logger.Warn("discarding unreadable cached report", "fingerprint", fingerprint, "error", err)
		return nil
	}
	return report
}

func (r *Runner) save(ctx context.Context, req *Request, res *Result, tier types.Tier, content string) {
	if r.store == nil {
		return
	}
	url := req.URL
	if req.Context != nil && req.Context.URL != "" {
		url = req.Context.URL
	}
	_, err := r.store.SaveReport(ctx, &db.ReportInput{
		Fingerprint: res.Fingerprint,
		Tier:        tier,
		URL:         url,
		ContentHash: db.HashContent(content),
		Report:      res.Report,
		TTL:         r.reportTTL,
	})
	if err != nil {
		r.logger.Warn("failed to cache report", "fingerprint", res.Fingerprint, "error", err)
		emit(req, StepSave, "warning", err.Error(), nil)
		return
	}
	emit(req, StepSave, "complete", "Report cached", res.Fingerprint)
}
