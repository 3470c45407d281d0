package crawling

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonathan/geo-scorer/internal/fetch"
	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/scoring"
	"github.com/jonathan/geo-scorer/internal/types"
)

// Defaults for Options.
const (
	DefaultMaxPages          = 10
	DefaultConcurrency       = 4
	DefaultRequestsPerSecond = 2.0
)

// FetchFunc returns the raw HTML at url.
type FetchFunc func(ctx context.Context, url string) (string, error)

// ScoreFunc scores one page's content.
type ScoreFunc func(ctx context.Context, url, content string) (*types.QuickScore, error)

// Options controls an audit.
type Options struct {
	MaxPages          int
	Concurrency       int
	RequestsPerSecond float64
	Fetch             FetchFunc
	Classifier        llm.Client
	Logger            *slog.Logger
}

// PageResult is the outcome for one audited page. Error is set instead of
// Score when the page could not be fetched or scored.
type PageResult struct {
	URL   string            `json:"url"`
	Kind  PageKind          `json:"kind"`
	Score *types.QuickScore `json:"score,omitempty"`
	Error string            `json:"error,omitempty"`
}

// PillarAverage is one pillar's mean percentage across the scored pages.
type PillarAverage struct {
	Key        types.PillarKey `json:"key"`
	Percentage float64         `json:"percentage"`
}

// SiteAudit aggregates the page scores of one site.
type SiteAudit struct {
	Seed              string          `json:"seed"`
	Pages             []PageResult    `json:"pages"`
	Scored            int             `json:"scored"`
	AveragePercentage float64         `json:"average_percentage"`
	Grade             string          `json:"grade"`
	WeakestPillars    []PillarAverage `json:"weakest_pillars"`
}

const weakestCount = 3

func (o *Options) normalize() {
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if o.Fetch == nil {
		o.Fetch = defaultFetch
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

func defaultFetch(ctx context.Context, url string) (string, error) {
	res, err := fetch.URL(ctx, url, fetch.DefaultOptions())
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// Audit fetches seed, discovers same-site links, picks up to MaxPages pages
// (the seed first) and scores each with score. Per-page failures are recorded
// on the page; only a failure to fetch the seed fails the audit.
func Audit(ctx context.Context, seed string, score ScoreFunc, opts *Options) (*SiteAudit, error) {
	if score == nil {
		return nil, ErrNoScorer
	}
	o := Options{}
	if opts != nil {
		o = *opts
	}
	o.normalize()

	limiter := rate.NewLimiter(rate.Limit(o.RequestsPerSecond), 1)
	if err := limiter.Wait(ctx); err != nil {
		return nil, &SeedError{URL: seed, Cause: err}
	}
	seedHTML, err := o.Fetch(ctx, seed)
	if err != nil {
		return nil, &SeedError{URL: seed, Cause: err}
	}

	links, err := ExtractLinks(seedHTML, seed)
	if err != nil {
		return nil, err
	}
	o.Logger.Info("discovered links", "seed", seed, "count", len(links))

	candidates := make([]string, 0, len(links))
	for _, link := range links {
		if link != trimSlash(seed) {
			candidates = append(candidates, link)
		}
	}
	classified, err := ClassifyLinks(ctx, candidates, o.Classifier)
	if err != nil {
		o.Logger.Warn("llm classification failed, using url heuristics", "error", err)
		classified, _ = ClassifyLinks(ctx, candidates, nil)
	}

	pages := make([]PageResult, 0, o.MaxPages)
	pages = append(pages, PageResult{URL: seed, Kind: ClassifyURL(seed)})
	for _, cl := range selectPages(classified, o.MaxPages-1) {
		pages = append(pages, PageResult{URL: cl.URL, Kind: cl.Kind})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	for i := range pages {
		page := &pages[i]
		g.Go(func() error {
			content := seedHTML
			if i > 0 {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				body, err := o.Fetch(gctx, page.URL)
				if err != nil {
					page.Error = err.Error()
					o.Logger.Warn("page fetch failed", "url", page.URL, "error", err)
					return nil
				}
				content = body
			}
			qs, err := score(gctx, page.URL, content)
			if err != nil {
				page.Error = err.Error()
				o.Logger.Warn("page scoring failed", "url", page.URL, "error", err)
				return nil
			}
			page.Score = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("audit %s: %w", seed, err)
	}

	return aggregate(seed, pages), nil
}

func aggregate(seed string, pages []PageResult) *SiteAudit {
	audit := &SiteAudit{Seed: seed, Pages: pages, WeakestPillars: make([]PillarAverage, 0)}

	var total float64
	sums := make(map[types.PillarKey]float64)
	counts := make(map[types.PillarKey]int)
	for _, p := range pages {
		if p.Score == nil {
			continue
		}
		audit.Scored++
		total += p.Score.Percentage
		for key, qp := range p.Score.Pillars {
			if qp.Max <= 0 {
				continue
			}
			sums[key] += qp.Score / qp.Max * 100
			counts[key]++
		}
	}
	if audit.Scored == 0 {
		audit.Grade = scoring.Grade(0)
		return audit
	}
	audit.AveragePercentage = round2(total / float64(audit.Scored))
	audit.Grade = scoring.Grade(audit.AveragePercentage)

	for key, sum := range sums {
		audit.WeakestPillars = append(audit.WeakestPillars, PillarAverage{
			Key:        key,
			Percentage: round2(sum / float64(counts[key])),
		})
	}
	sort.Slice(audit.WeakestPillars, func(i, j int) bool {
		a, b := audit.WeakestPillars[i], audit.WeakestPillars[j]
		if a.Percentage != b.Percentage {
			return a.Percentage < b.Percentage
		}
		return a.Key < b.Key
	})
	if len(audit.WeakestPillars) > weakestCount {
		audit.WeakestPillars = audit.WeakestPillars[:weakestCount]
	}
	return audit
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
