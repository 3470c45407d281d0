package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/geo-scorer/internal/types"
)

// PasswordConfig hashes and verifies API keys with bcrypt.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional, appended before hashing
}

// NewPasswordConfig reads BCRYPT_COST (default 12) and API_KEY_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12"
	}
	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("API_KEY_PEPPER"),
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-14)", c.BcryptCost, bcrypt.MinCost)
	}
	return nil
}

func (c *PasswordConfig) peppered(key string) []byte {
	return []byte(key + c.Pepper)
}

// HashPassword hashes an API key.
func (c *PasswordConfig) HashPassword(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("cannot hash an empty key")
	}
	hash, err := bcrypt.GenerateFromPassword(c.peppered(key), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether key matches storedHash.
func (c *PasswordConfig) VerifyPassword(key, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), c.peppered(key)) == nil
}

// ResolveAPIKey returns the configured key matching presented, if any.
func (c *PasswordConfig) ResolveAPIKey(keys []APIKey, presented string) (APIKey, types.Tier, bool) {
	if presented == "" {
		return APIKey{}, "", false
	}
	for _, k := range keys {
		if !c.VerifyPassword(presented, k.Hash) {
			continue
		}
		tier, err := types.ParseTier(k.Tier)
		if err != nil {
			return APIKey{}, "", false
		}
		return k, tier, true
	}
	return APIKey{}, "", false
}
