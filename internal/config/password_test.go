package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/geo-scorer/internal/types"
)

func fastHasher() *PasswordConfig {
	return &PasswordConfig{BcryptCost: bcrypt.MinCost}
}

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{"default", "", "", 12, false},
		{"custom", "10", "pep", 10, false},
		{"too high", "15", "", 0, true},
		{"too low", "3", "", 0, true},
		{"not a number", "high", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("API_KEY_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	c := fastHasher()

	hash, err := c.HashPassword("geo_live_abc123")
	require.NoError(t, err)
	assert.NotEqual(t, "geo_live_abc123", hash)
	assert.True(t, c.VerifyPassword("geo_live_abc123", hash))
	assert.False(t, c.VerifyPassword("geo_live_abc124", hash))

	again, err := c.HashPassword("geo_live_abc123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts differ")

	_, err = c.HashPassword("")
	assert.Error(t, err)
}

func TestVerify_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper-1"}
	hash, err := peppered.HashPassword("key")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("key", hash))
	assert.False(t, fastHasher().VerifyPassword("key", hash))
	assert.False(t, (&PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper-2"}).VerifyPassword("key", hash))
}

func TestResolveAPIKey(t *testing.T) {
	c := fastHasher()
	proHash, err := c.HashPassword("pro-key")
	require.NoError(t, err)
	agencyHash, err := c.HashPassword("agency-key")
	require.NoError(t, err)

	keys := []APIKey{
		{Name: "pro-client", Hash: proHash, Tier: "pro"},
		{Name: "agency-client", Hash: agencyHash, Tier: "agency"},
	}

	k, tier, ok := c.ResolveAPIKey(keys, "agency-key")
	require.True(t, ok)
	assert.Equal(t, "agency-client", k.Name)
	assert.Equal(t, types.TierAgency, tier)

	_, _, ok = c.ResolveAPIKey(keys, "unknown")
	assert.False(t, ok)
	_, _, ok = c.ResolveAPIKey(keys, "")
	assert.False(t, ok)

	_, _, ok = c.ResolveAPIKey([]APIKey{{Name: "bad", Hash: proHash, Tier: "gold"}}, "pro-key")
	assert.False(t, ok)
}

func TestVerify_Concurrent(t *testing.T) {
	c := fastHasher()
	hash, err := c.HashPassword("shared")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.VerifyPassword("shared", hash)
		}(i)
	}
	wg.Wait()
	for _, ok := range results {
		assert.True(t, ok)
	}
}
