package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"tier":                  "pro",
		"url":                   "https://example.com/post",
		"entity":                "Widgets",
		"fetch_timeout_seconds": 5,
		"verbose":               true,
		"server": {"addr": ":9090", "requests_per_minute": 30}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "pro", cfg.Tier)
	assert.Equal(t, "https://example.com/post", cfg.URL)
	assert.Equal(t, "Widgets", cfg.Entity)
	assert.Equal(t, 5, cfg.FetchTimeoutSeconds)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Server.RequestsPerMinute)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
tier: agency
corpus_id: blog
cache_ttl_hours: 12
llm:
  provider: gemini
  models:
    standard: gemini-custom
  temperature: 0.2
server:
  burst: 3
  api_keys:
    - name: ci
      hash: "$2a$04$abc"
      tier: pro
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "agency", cfg.Tier)
	assert.Equal(t, "blog", cfg.CorpusID)
	assert.Equal(t, 12, cfg.CacheTTLHours)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, "gemini-custom", cfg.LLM.GetModel(llm.TierStandard))
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 3, cfg.Server.Burst)
	require.Len(t, cfg.Server.APIKeys, 1)
	assert.Equal(t, "ci", cfg.Server.APIKeys[0].Name)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "config path is empty")

	_, err = LoadConfig("/nonexistent/path/config.json")
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeFile(t, "bad.json", `{ invalid json }`))
	assert.ErrorContains(t, err, "failed to parse config JSON")

	_, err = LoadConfig(writeFile(t, "bad.yml", "tier: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func TestValidate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Default(), ""},
		{"empty", Config{}, ""},
		{"bad tier", Config{Tier: "gold"}, "invalid tier"},
		{"negative timeout", Config{FetchTimeoutSeconds: -1}, "fetch_timeout_seconds"},
		{"negative ttl", Config{CacheTTLHours: -1}, "cache_ttl_hours"},
		{"negative rate", Config{Server: ServerConfig{RequestsPerMinute: -1}}, "rate limits"},
		{"bad llm", Config{LLM: &llm.Config{Provider: "other"}}, "unsupported llm provider"},
		{"valid key", Config{Server: ServerConfig{APIKeys: []APIKey{{Name: "a", Hash: string(hash), Tier: "pro"}}}}, ""},
		{"unnamed key", Config{Server: ServerConfig{APIKeys: []APIKey{{Hash: string(hash), Tier: "pro"}}}}, "has no name"},
		{"duplicate key", Config{Server: ServerConfig{APIKeys: []APIKey{
			{Name: "a", Hash: string(hash), Tier: "pro"},
			{Name: "a", Hash: string(hash), Tier: "free"},
		}}}, "duplicate api key"},
		{"key tier", Config{Server: ServerConfig{APIKeys: []APIKey{{Name: "a", Hash: string(hash), Tier: "gold"}}}}, "invalid tier"},
		{"plaintext key", Config{Server: ServerConfig{APIKeys: []APIKey{{Name: "a", Hash: "secret", Tier: "pro"}}}}, "not a bcrypt hash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Tier:   "pro",
		Entity: "Widgets",
		Server: ServerConfig{Burst: 2},
	}

	merged := partial.MergeWithDefaults(Default())

	assert.Equal(t, "pro", merged.Tier)
	assert.Equal(t, "Widgets", merged.Entity)
	assert.Equal(t, 2, merged.Server.Burst)
	assert.Equal(t, DefaultFetchTimeoutSeconds, merged.FetchTimeoutSeconds)
	assert.Equal(t, DefaultCacheTTLHours, merged.CacheTTLHours)
	assert.Equal(t, DefaultAddr, merged.Server.Addr)
	assert.Equal(t, DefaultRequestsPerMinute, merged.Server.RequestsPerMinute)
	assert.Equal(t, int64(5<<20), merged.Server.MaxBodyBytes)

	// the receiver is not modified
	assert.Equal(t, "", partial.Server.Addr)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Tier: "free", URL: "https://example.com"}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, cfg, merged)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("DATABASE_URL", "postgres://env")

	t.Setenv("GEO_DEFAULT_TIER", "pro")
	t.Setenv("GEO_FETCH_TIMEOUT", "5")

	cfg := Config{APIKey: "from-file"}
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "pro", cfg.Tier)
	assert.Equal(t, 5, cfg.FetchTimeoutSeconds)
}

func TestApplyEnv_InvalidTimeout(t *testing.T) {
	t.Setenv("GEO_FETCH_TIMEOUT", "soon")
	cfg := Config{}
	assert.Error(t, cfg.ApplyEnv())
}

func TestApplyEnv_APIKeysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: partner\n  hash: $2a$04$abcdefghijklmnopqrstuu\n  tier: agency\n"), 0o600))
	t.Setenv("GEO_API_KEYS_FILE", path)

	cfg := Config{}
	require.NoError(t, cfg.ApplyEnv())
	require.Len(t, cfg.Server.APIKeys, 1)
	assert.Equal(t, "partner", cfg.Server.APIKeys[0].Name)
	assert.Equal(t, "agency", cfg.Server.APIKeys[0].Tier)

	t.Setenv("GEO_API_KEYS_FILE", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, (&Config{}).ApplyEnv())
}

func TestParsedTier(t *testing.T) {
	tier, err := (&Config{}).ParsedTier()
	require.NoError(t, err)
	assert.Equal(t, types.TierFree, tier)

	tier, err = (&Config{Tier: " Agency "}).ParsedTier()
	require.NoError(t, err)
	assert.Equal(t, types.TierAgency, tier)

	_, err = (&Config{Tier: "x"}).ParsedTier()
	assert.Error(t, err)
}
