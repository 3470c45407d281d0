package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultJWTIssuer is the iss claim of tier tokens minted by geo_scorer.
	DefaultJWTIssuer = "geo-scorer"
	// DefaultTokenHours is how long an issued tier token stays valid.
	DefaultTokenHours = 24
	minSecretLength   = 16
)

// JWTConfig holds the HMAC secret, issuer and lifetime of tier tokens.
type JWTConfig struct {
	Secret          string
	Issuer          string
	ExpirationHours int
}

// Lifetime is the token validity window.
func (c *JWTConfig) Lifetime() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// NewJWTConfig reads JWT_SECRET (required), JWT_ISSUER and
// JWT_EXPIRATION_HOURS.
func NewJWTConfig() (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret:          os.Getenv("JWT_SECRET"),
		Issuer:          os.Getenv("JWT_ISSUER"),
		ExpirationHours: DefaultTokenHours,
	}
	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS %q: %w", raw, err)
		}
		cfg.ExpirationHours = hours
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultJWTIssuer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects a missing or short secret and a non-positive lifetime.
func (c *JWTConfig) Validate() error {
	switch {
	case c.Secret == "":
		return errors.New("JWT_SECRET is required but not set")
	case len(c.Secret) < minSecretLength:
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	case c.ExpirationHours < 1:
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got %d", c.ExpirationHours)
	}
	return nil
}
