package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonathan/geo-scorer/internal/db"
	"github.com/jonathan/geo-scorer/internal/pillars"
)

// FileCache is the subset of *db.DB the cached fetcher needs.
type FileCache interface {
	GetFreshFetchedFile(ctx context.Context, fileURL string, maxAge time.Duration) (*db.FetchedFile, error)
	ShouldSkipURL(ctx context.Context, fileURL string) (bool, string, error)
	UpsertFetchedFile(ctx context.Context, f *db.FetchedFile, ttl time.Duration) error
	RecordFailedFetch(ctx context.Context, fileURL string, httpStatus int, errorMsg string) error
}

// CachedFetcher wraps a pillars.Fetcher with database-backed caching and
// failure backoff.
type CachedFetcher struct {
	cache     FileCache
	next      pillars.Fetcher
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
	logger    *slog.Logger
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Logger    *slog.Logger
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL: db.DefaultFileCacheTTL,
	}
}

// NewCachedFetcher creates a cached fetcher in front of next. A nil cache makes it
// a pass-through.
func NewCachedFetcher(cache FileCache, next pillars.Fetcher, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = db.DefaultFileCacheTTL
	}
	if next == nil {
		next = NewClient(nil)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFetcher{
		cache:     cache,
		next:      next,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
		logger:    logger,
	}
}

// FetchText implements pillars.Fetcher. Successful and 4xx answers are cached;
// transport failures and 5xx/429 answers are recorded for backoff.
func (f *CachedFetcher) FetchText(ctx context.Context, url string) (*pillars.FetchedText, error) {
	useCache := !f.skipCache && f.cache != nil

	if useCache {
		skip, reason, err := f.cache.ShouldSkipURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to check skip status: %w", err)
		}
		if skip {
			return nil, &Error{
				URL:       url,
				Message:   fmt.Sprintf("URL skipped: %s", reason),
				Retryable: false,
			}
		}

		cached, err := f.cache.GetFreshFetchedFile(ctx, url, f.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check cache: %w", err)
		}
		if cached != nil {
			return &pillars.FetchedText{
				Body:       derefString(cached.Body),
				StatusCode: derefInt(cached.HTTPStatus),
			}, nil
		}
	}

	res, err := f.next.FetchText(ctx, url)
	if !useCache {
		return res, err
	}
	if err != nil {
		if recErr := f.cache.RecordFailedFetch(ctx, url, 0, err.Error()); recErr != nil {
			f.logger.Warn("failed to record fetch failure", "url", url, "error", recErr)
		}
		return nil, err
	}

	if res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests {
		msg := fmt.Sprintf("HTTP status %d", res.StatusCode)
		if recErr := f.cache.RecordFailedFetch(ctx, url, res.StatusCode, msg); recErr != nil {
			f.logger.Warn("failed to record fetch failure", "url", url, "error", recErr)
		}
		return res, nil
	}

	body := res.Body
	status := res.StatusCode
	file := &db.FetchedFile{
		URL:         url,
		Body:        &body,
		HTTPStatus:  &status,
		FetchStatus: db.FetchStatusSuccess,
	}
	if err := f.cache.UpsertFetchedFile(ctx, file, f.cacheTTL); err != nil {
		// The fetch succeeded; a cache write failure only costs a refetch.
		f.logger.Warn("failed to cache fetched file", "url", url, "error", err)
	}
	return res, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
