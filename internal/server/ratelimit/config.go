package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string // exact path, or a prefix ending in "/"
	Method string
	Limit  int // requests per Window; 0 disables limiting
	Window time.Duration
	Burst  int // defaults to Limit
}

// env reads typed values, falling back when a variable is unset or unparseable.
type env func(key string) string

func (e env) intOr(key string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(e(key))); err == nil {
		return n
	}
	return fallback
}

func (e env) boolOr(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(e(key))); err == nil {
		return b
	}
	return fallback
}

func (e env) durationOr(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(e(key))); err == nil {
		return d
	}
	return fallback
}

// addrs parses a comma-separated list of client addresses.
func (e env) addrs(key string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(e(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}

// LoadConfig reads RATE_LIMIT_* environment variables.
//
// RATE_LIMIT_SCORE_PER_MINUTE and RATE_LIMIT_QUICK_PER_MINUTE retune the full
// and the cheap scoring endpoints respectively.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(e env) *Config {
	if !e.boolOr("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	endpoints := DefaultEndpointConfigs()
	scoreLimit := e.intOr("RATE_LIMIT_SCORE_PER_MINUTE", 0)
	quickLimit := e.intOr("RATE_LIMIT_QUICK_PER_MINUTE", 0)
	for i := range endpoints {
		switch endpoints[i].Path {
		case "/score", "/score/stream":
			if scoreLimit > 0 {
				endpoints[i].Limit = scoreLimit
			}
		case "/score/quick", "/score/partial":
			if quickLimit > 0 {
				endpoints[i].Limit = quickLimit
			}
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    e.intOr("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   e.durationOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: e.durationOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       e.addrs("RATE_LIMIT_WHITELIST"),
		Blacklist:       e.addrs("RATE_LIMIT_BLACKLIST"),
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs limits the scoring endpoints. Full scoring may fetch
// discovery files and call the LLM, so it is the strictest.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/score", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/score/stream", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/score/quick", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/score/partial", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/reports/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 50},
	}
}

// WithScoreLimit returns a copy of c whose full-scoring limits use
// requestsPerMinute and burst. Zero keeps the current value.
func (c *Config) WithScoreLimit(requestsPerMinute, burst int) *Config {
	out := *c
	out.EndpointConfigs = append([]EndpointConfig(nil), c.EndpointConfigs...)
	for i, ec := range out.EndpointConfigs {
		if ec.Path != "/score" && ec.Path != "/score/stream" {
			continue
		}
		if requestsPerMinute > 0 {
			out.EndpointConfigs[i].Limit = requestsPerMinute
		}
		if burst > 0 {
			out.EndpointConfigs[i].Burst = burst
		}
	}
	return &out
}
