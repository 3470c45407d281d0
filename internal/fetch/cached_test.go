package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-scorer/internal/db"
	"github.com/jonathan/geo-scorer/internal/pillars"
)

type memoryCache struct {
	files    map[string]*db.FetchedFile
	failures map[string]int
	skip     map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		files:    map[string]*db.FetchedFile{},
		failures: map[string]int{},
		skip:     map[string]string{},
	}
}

func (m *memoryCache) GetFreshFetchedFile(_ context.Context, url string, _ time.Duration) (*db.FetchedFile, error) {
	return m.files[url], nil
}

func (m *memoryCache) ShouldSkipURL(_ context.Context, url string) (bool, string, error) {
	reason, ok := m.skip[url]
	return ok, reason, nil
}

func (m *memoryCache) UpsertFetchedFile(_ context.Context, f *db.FetchedFile, _ time.Duration) error {
	m.files[f.URL] = f
	return nil
}

func (m *memoryCache) RecordFailedFetch(_ context.Context, url string, status int, _ string) error {
	m.failures[url] = status
	return nil
}

type countingFetcher struct {
	calls     int
	responses map[string]*pillars.FetchedText
}

func (c *countingFetcher) FetchText(_ context.Context, url string) (*pillars.FetchedText, error) {
	c.calls++
	if res, ok := c.responses[url]; ok {
		return res, nil
	}
	return nil, errors.New("connection refused")
}

func TestCachedFetcher_CachesSuccessAndNotFound(t *testing.T) {
	cache := newMemoryCache()
	next := &countingFetcher{responses: map[string]*pillars.FetchedText{
		"https://a.example/robots.txt": {Body: "User-agent: *", StatusCode: http.StatusOK},
		"https://a.example/llms.txt":   {StatusCode: http.StatusNotFound},
	}}
	f := NewCachedFetcher(cache, next, nil)

	for i := 0; i < 2; i++ {
		res, err := f.FetchText(context.Background(), "https://a.example/robots.txt")
		require.NoError(t, err)
		assert.Equal(t, "User-agent: *", res.Body)
		assert.Equal(t, http.StatusOK, res.StatusCode)

		res, err = f.FetchText(context.Background(), "https://a.example/llms.txt")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedFetcher_RecordsFailures(t *testing.T) {
	cache := newMemoryCache()
	next := &countingFetcher{responses: map[string]*pillars.FetchedText{
		"https://a.example/robots.txt": {StatusCode: http.StatusBadGateway},
	}}
	f := NewCachedFetcher(cache, next, nil)

	res, err := f.FetchText(context.Background(), "https://a.example/robots.txt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Equal(t, http.StatusBadGateway, cache.failures["https://a.example/robots.txt"])
	assert.Empty(t, cache.files)

	_, err = f.FetchText(context.Background(), "https://down.example/robots.txt")
	require.Error(t, err)
	assert.Equal(t, 0, cache.failures["https://down.example/robots.txt"])
}

func TestCachedFetcher_SkipsDuringBackoff(t *testing.T) {
	cache := newMemoryCache()
	cache.skip["https://a.example/robots.txt"] = "retry backoff"
	next := &countingFetcher{}
	f := NewCachedFetcher(cache, next, nil)

	_, err := f.FetchText(context.Background(), "https://a.example/robots.txt")
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "retry backoff")
	assert.Zero(t, next.calls)
}

func TestCachedFetcher_NilCachePassesThrough(t *testing.T) {
	next := &countingFetcher{responses: map[string]*pillars.FetchedText{
		"https://a.example/robots.txt": {Body: "x", StatusCode: http.StatusOK},
	}}
	f := NewCachedFetcher(nil, next, &CachedFetcherConfig{})
	assert.Equal(t, db.DefaultFileCacheTTL, f.cacheTTL)

	for i := 0; i < 2; i++ {
		_, err := f.FetchText(context.Background(), "https://a.example/robots.txt")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, next.calls)
}

func TestDeref(t *testing.T) {
	s := "x"
	n := 7
	assert.Equal(t, "x", derefString(&s))
	assert.Equal(t, "", derefString(nil))
	assert.Equal(t, 7, derefInt(&n))
	assert.Equal(t, 0, derefInt(nil))
}
