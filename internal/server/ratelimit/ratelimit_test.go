package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestLimiter_AllowAndRefill(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: 10 * time.Second})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		ok, info := l.Allow("1.2.3.4", "/pillars", "GET")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	ok, info := l.Allow("1.2.3.4", "/pillars", "GET")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, time.Second, info.RetryAfter)

	clock.advance(time.Second)
	ok, _ = l.Allow("1.2.3.4", "/pillars", "GET")
	assert.True(t, ok)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	ok, _ := l.Allow("a", "/pillars", "GET")
	assert.True(t, ok)
	ok, _ = l.Allow("a", "/pillars", "GET")
	assert.False(t, ok)
	ok, _ = l.Allow("b", "/pillars", "GET")
	assert.True(t, ok)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"trusted": true},
		Blacklist:     map[string]bool{"blocked": true},
	})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("trusted", "/score", "POST")
		assert.True(t, ok)
	}
	ok, _ := l.Allow("blocked", "/health", "GET")
	assert.False(t, ok)

	off, _ := newTestLimiter(&Config{Enabled: false})
	for i := 0; i < 5; i++ {
		ok, _ := off.Allow("x", "/score", "POST")
		assert.True(t, ok)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []EndpointConfig{{Path: "/score", Method: "POST", Limit: 2, Window: time.Minute, Burst: 2}},
	})
	defer l.Stop()

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow("c", "/score", "POST")
		assert.True(t, ok)
	}
	ok, info := l.Allow("c", "/score", "POST")
	assert.False(t, ok)
	assert.Equal(t, 2, info.Limit)

	ok, info = l.Allow("c", "/score/quick", "POST")
	assert.True(t, ok)
	assert.Equal(t, 100, info.Limit)
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:         true,
		EndpointConfigs: []EndpointConfig{{Path: "/reports/", Method: "GET", Limit: 1, Window: time.Minute}},
	})
	defer l.Stop()

	ok, _ := l.Allow("c", "/reports/abc", "GET")
	assert.True(t, ok)
	ok, _ = l.Allow("c", "/reports/def", "GET")
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("c", "/health", "GET")
		assert.True(t, ok)
	}
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("old", "/pillars", "GET")
	clock.advance(2 * time.Hour)
	l.Allow("new", "/pillars", "GET")
	require.Equal(t, 2, l.Len())

	l.cleanupBuckets()
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})
	defer l.Stop()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/pillars", "GET"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(50), allowed.Load())
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()
	l.Stop()

	ok, info := l.Allow("c", "/anything", "GET")
	assert.True(t, ok)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	assert.Equal(t, 60, MatchEndpoint("/score", "POST", configs).Limit)
	assert.Equal(t, 120, MatchEndpoint("/score/quick", "POST", configs).Limit)
	assert.Equal(t, "/reports/", MatchEndpoint("/reports/abc", "GET", configs).Path)
	assert.Nil(t, MatchEndpoint("/score", "GET", configs))
	assert.Nil(t, MatchEndpoint("/pillars", "GET", configs))
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
}

func TestWithScoreLimit(t *testing.T) {
	base := &Config{EndpointConfigs: DefaultEndpointConfigs()}
	tuned := base.WithScoreLimit(5, 1)

	assert.Equal(t, 5, MatchEndpoint("/score", "POST", tuned.EndpointConfigs).Limit)
	assert.Equal(t, 1, MatchEndpoint("/score/stream", "POST", tuned.EndpointConfigs).Burst)
	assert.Equal(t, 120, MatchEndpoint("/score/quick", "POST", tuned.EndpointConfigs).Limit)
	assert.Equal(t, 60, MatchEndpoint("/score", "POST", base.EndpointConfigs).Limit)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "7")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 7, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["10.0.0.2"])

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}

func TestLoadConfig_EndpointOverrides(t *testing.T) {
	vars := map[string]string{
		"RATE_LIMIT_SCORE_PER_MINUTE": "12",
		"RATE_LIMIT_QUICK_PER_MINUTE": "30",
		"RATE_LIMIT_DEFAULT_WINDOW":   "30s",
		"RATE_LIMIT_DEFAULT_LIMIT":    "not-a-number",
		"RATE_LIMIT_BLACKLIST":        " ,10.9.9.9,",
	}
	cfg := loadConfig(func(key string) string { return vars[key] })

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1000, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.9.9.9": true}, cfg.Blacklist)
	assert.Equal(t, 12, MatchEndpoint("/score/stream", "POST", cfg.EndpointConfigs).Limit)
	assert.Equal(t, 30, MatchEndpoint("/score/partial", "POST", cfg.EndpointConfigs).Limit)
	assert.Equal(t, 300, MatchEndpoint("/reports/x", "GET", cfg.EndpointConfigs).Limit)
}
