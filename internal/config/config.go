// Package config loads scorer settings from JSON or YAML files and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/types"
)

// Defaults used when neither the file nor a flag sets a value.
const (
	DefaultTier                = "free"
	DefaultFetchTimeoutSeconds = 10
	DefaultCacheTTLHours       = 24
	DefaultAddr                = ":8080"
	DefaultRequestsPerMinute   = 60
	DefaultBurst               = 10
)

// APIKey grants a tier to callers presenting a key whose bcrypt hash is Hash.
type APIKey struct {
	Name string `json:"name" yaml:"name"`
	Hash string `json:"hash" yaml:"hash"`
	Tier string `json:"tier" yaml:"tier"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr              string   `json:"addr,omitempty" yaml:"addr,omitempty"`
	RequestsPerMinute int      `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
	Burst             int      `json:"burst,omitempty" yaml:"burst,omitempty"`
	MaxBodyBytes      int64    `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty"`
	APIKeys           []APIKey `json:"api_keys,omitempty" yaml:"api_keys,omitempty"`
}

// Config is the file-backed configuration. Every field is optional; CLI flags
// override file values.
type Config struct {
	Tier     string `json:"tier,omitempty" yaml:"tier,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Entity   string `json:"entity,omitempty" yaml:"entity,omitempty"`
	CorpusID string `json:"corpus_id,omitempty" yaml:"corpus_id,omitempty"`

	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds,omitempty" yaml:"fetch_timeout_seconds,omitempty"`
	UserAgent           string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	UseBrowser          bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	CacheTTLHours       int    `json:"cache_ttl_hours,omitempty" yaml:"cache_ttl_hours,omitempty"`

	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"` // Gemini
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	LLM    *llm.Config  `json:"llm,omitempty" yaml:"llm,omitempty"`
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
}

// Default returns a Config holding the built-in defaults.
func Default() Config {
	return Config{
		Tier:                DefaultTier,
		FetchTimeoutSeconds: DefaultFetchTimeoutSeconds,
		CacheTTLHours:       DefaultCacheTTLHours,
		Server: ServerConfig{
			Addr:              DefaultAddr,
			RequestsPerMinute: DefaultRequestsPerMinute,
			Burst:             DefaultBurst,
			MaxBodyBytes:      5 << 20,
		},
	}
}

// LoadConfig reads path as YAML when it ends in .yaml or .yml and as JSON otherwise.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAPIKeys reads a JSON or YAML list of API keys.
func LoadAPIKeys(path string) ([]APIKey, error) {
	var keys []APIKey
	if err := decodeFile(path, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return nil
}

// Validate checks value ranges. Required fields are enforced by the CLI after merging.
func (c *Config) Validate() error {
	if c.Tier != "" {
		if _, err := types.ParseTier(c.Tier); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'fetch_timeout_seconds' must be non-negative")
	}
	if c.CacheTTLHours < 0 {
		return fmt.Errorf("config error: 'cache_ttl_hours' must be non-negative")
	}
	if c.Server.RequestsPerMinute < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("config error: server rate limits must be non-negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("config error: 'max_body_bytes' must be non-negative")
	}
	if c.LLM != nil {
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	names := map[string]bool{}
	for i, k := range c.Server.APIKeys {
		if k.Name == "" {
			return fmt.Errorf("config error: api_keys[%d] has no name", i)
		}
		if names[k.Name] {
			return fmt.Errorf("config error: duplicate api key name %q", k.Name)
		}
		names[k.Name] = true
		if _, err := types.ParseTier(k.Tier); err != nil {
			return fmt.Errorf("config error: api key %q: %w", k.Name, err)
		}
		if _, err := bcrypt.Cost([]byte(k.Hash)); err != nil {
			return fmt.Errorf("config error: api key %q hash is not a bcrypt hash", k.Name)
		}
	}
	return nil
}

// MergeWithDefaults returns c with zero fields filled from defaults. Booleans
// are not merged since an unset bool cannot be told apart from false.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	setString(&result.Tier, defaults.Tier)
	setString(&result.URL, defaults.URL)
	setString(&result.Entity, defaults.Entity)
	setString(&result.CorpusID, defaults.CorpusID)
	setString(&result.UserAgent, defaults.UserAgent)
	setString(&result.DatabaseURL, defaults.DatabaseURL)
	setString(&result.APIKey, defaults.APIKey)
	setString(&result.Server.Addr, defaults.Server.Addr)

	setInt(&result.FetchTimeoutSeconds, defaults.FetchTimeoutSeconds)
	setInt(&result.CacheTTLHours, defaults.CacheTTLHours)
	setInt(&result.Server.RequestsPerMinute, defaults.Server.RequestsPerMinute)
	setInt(&result.Server.Burst, defaults.Server.Burst)
	if result.Server.MaxBodyBytes == 0 {
		result.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}

	if result.LLM == nil {
		result.LLM = defaults.LLM
	}
	if len(result.Server.APIKeys) == 0 {
		result.Server.APIKeys = defaults.Server.APIKeys
	}
	return result
}

// ApplyEnv fills empty fields from the environment: GEMINI_API_KEY,
// DATABASE_URL, GEO_DEFAULT_TIER, GEO_FETCH_TIMEOUT (seconds) and
// GEO_API_KEYS_FILE. Call it before MergeWithDefaults.
func (c *Config) ApplyEnv() error {
	setString(&c.APIKey, os.Getenv("GEMINI_API_KEY"))
	setString(&c.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&c.Tier, os.Getenv("GEO_DEFAULT_TIER"))

	if raw := os.Getenv("GEO_FETCH_TIMEOUT"); raw != "" && c.FetchTimeoutSeconds == 0 {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid GEO_FETCH_TIMEOUT: %v", err)
		}
		c.FetchTimeoutSeconds = seconds
	}
	if path := os.Getenv("GEO_API_KEYS_FILE"); path != "" && len(c.Server.APIKeys) == 0 {
		keys, err := LoadAPIKeys(path)
		if err != nil {
			return fmt.Errorf("failed to load GEO_API_KEYS_FILE: %w", err)
		}
		c.Server.APIKeys = keys
	}
	return nil
}

// ParsedTier returns the configured tier, defaulting to free.
func (c *Config) ParsedTier() (types.Tier, error) {
	if c.Tier == "" {
		return types.TierFree, nil
	}
	return types.ParseTier(c.Tier)
}

func setString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

func setInt(dst *int, fallback int) {
	if *dst == 0 {
		*dst = fallback
	}
}
