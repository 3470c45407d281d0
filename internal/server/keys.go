package server

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/jonathan/geo-scorer/internal/config"
	"github.com/jonathan/geo-scorer/internal/types"
)

type resolvedKey struct {
	name string
	tier types.Tier
	ok   bool
}

// APIKeyResolver checks presented API keys against configured bcrypt hashes.
// Accepted keys are remembered by digest so each pays the bcrypt cost once.
type APIKeyResolver struct {
	passwords *config.PasswordConfig
	keys      []config.APIKey

	mu    sync.RWMutex
	cache map[string]resolvedKey
}

// NewAPIKeyResolver returns a resolver over keys.
func NewAPIKeyResolver(passwords *config.PasswordConfig, keys []config.APIKey) *APIKeyResolver {
	return &APIKeyResolver{
		passwords: passwords,
		keys:      append([]config.APIKey(nil), keys...),
		cache:     make(map[string]resolvedKey),
	}
}

// ResolveKey implements middleware.KeyResolver.
func (r *APIKeyResolver) ResolveKey(key string) (string, types.Tier, bool) {
	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:])

	r.mu.RLock()
	hit, found := r.cache[digest]
	r.mu.RUnlock()
	if found {
		return hit.name, hit.tier, hit.ok
	}

	k, tier, ok := r.passwords.ResolveAPIKey(r.keys, key)
	if !ok {
		return "", "", false
	}

	r.mu.Lock()
	r.cache[digest] = resolvedKey{name: k.Name, tier: tier, ok: true}
	r.mu.Unlock()
	return k.Name, tier, true
}
