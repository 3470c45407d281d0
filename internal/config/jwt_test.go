package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_ISSUER", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours)
	assert.Equal(t, DefaultJWTIssuer, cfg.Issuer)
}

func TestNewJWTConfig_Env(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		wantHours  int
		wantErr    string
	}{
		{"custom expiration", "0123456789abcdef", "48", 48, ""},
		{"missing secret", "", "", 0, "JWT_SECRET is required"},
		{"short secret", "short", "", 0, "at least 16 characters"},
		{"non numeric expiration", "0123456789abcdef", "soon", 0, "invalid JWT_EXPIRATION_HOURS"},
		{"zero expiration", "0123456789abcdef", "0", 0, "at least 1 hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			t.Setenv("JWT_ISSUER", "tests")

			cfg, err := NewJWTConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
			assert.Equal(t, "tests", cfg.Issuer)
		})
	}
}

func TestJWTConfig_Lifetime(t *testing.T) {
	cfg := &JWTConfig{Secret: "0123456789abcdef", ExpirationHours: 3}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3*time.Hour, cfg.Lifetime())
}
