// Package middleware resolves the caller's tier entitlement from a bearer token
// or an API key.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jonathan/geo-scorer/internal/types"
)

// ContextKey is a typed key for context values.
type ContextKey string

const principalKey ContextKey = "principal"

// APIKeyHeader carries API keys.
const APIKeyHeader = "X-API-Key"

// Authentication methods recorded on a Principal.
const (
	MethodAnonymous = "anonymous"
	MethodJWT       = "jwt"
	MethodAPIKey    = "api_key"
)

// TierClaims is what a validated token exposes.
type TierClaims interface {
	GetTier() types.Tier
	GetSubject() (string, error)
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (TierClaims, error)
}

// KeyResolver maps an API key to its owner and tier.
type KeyResolver interface {
	ResolveKey(key string) (name string, tier types.Tier, ok bool)
}

// Principal is the authenticated caller.
type Principal struct {
	Name   string     `json:"name"`
	Tier   types.Tier `json:"tier"`
	Method string     `json:"method"`
}

// Anonymous is the principal of requests without credentials.
var Anonymous = Principal{Name: "anonymous", Tier: types.TierFree, Method: MethodAnonymous}

// Entitlement attaches a Principal to every request. Requests without
// credentials are Anonymous; requests with credentials that do not validate
// get 401. A nil tokens or keys rejects that credential kind.
func Entitlement(tokens TokenValidator, keys KeyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := Anonymous

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.Fields(authHeader)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || tokens == nil {
					unauthorized(w)
					return
				}
				claims, err := tokens.ValidateToken(parts[1])
				if err != nil {
					unauthorized(w)
					return
				}
				subject, _ := claims.GetSubject()
				principal = Principal{Name: subject, Tier: claims.GetTier(), Method: MethodJWT}
			} else if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
				if keys == nil {
					unauthorized(w)
					return
				}
				name, tier, ok := keys.ResolveKey(key)
				if !ok {
					unauthorized(w)
					return
				}
				principal = Principal{Name: name, Tier: tier, Method: MethodAPIKey}
			}

			if !principal.Tier.Valid() {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the caller stored by Entitlement, or Anonymous.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok {
		return p
	}
	return Anonymous
}
