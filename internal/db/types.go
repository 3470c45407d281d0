package db

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// FetchedFile is a cached robots.txt, llms.txt or page body.
type FetchedFile struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Body        *string   `json:"-"`
	ContentHash *string   `json:"content_hash,omitempty"`
	HTTPStatus  *int      `json:"http_status,omitempty"`
	// Error tracking
	FetchStatus        string     `json:"fetch_status"` // 'success', 'error', 'not_found', 'timeout', 'blocked'
	ErrorMessage       *string    `json:"error_message,omitempty"`
	IsPermanentFailure bool       `json:"is_permanent_failure"`
	RetryCount         int        `json:"retry_count"`
	RetryAfter         *time.Time `json:"retry_after,omitempty"`
	// Timestamps
	FetchedAt      time.Time  `json:"fetched_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ReportRecord is a cached GEO report keyed by request fingerprint.
type ReportRecord struct {
	ID          uuid.UUID `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Tier        string    `json:"tier"`
	URL         *string   `json:"url,omitempty"`
	ContentHash string    `json:"content_hash"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	Grade       string    `json:"grade"`
	// ReportJSON is the decompressed report document.
	ReportJSON     []byte    `json:"-"`
	ScoredAt       time.Time `json:"scored_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// FetchStatus constants for fetched files
const (
	FetchStatusSuccess  = "success"   // Fetched; the HTTP status may still be 4xx
	FetchStatusError    = "error"     // Generic error (may retry)
	FetchStatusNotFound = "not_found" // 404/410 - permanent failure
	FetchStatusTimeout  = "timeout"   // Request timed out (may retry)
	FetchStatusBlocked  = "blocked"   // 403/429 - blocked by server
)

// Cache lifetimes.
const (
	DefaultFileCacheTTL   = 24 * time.Hour
	DefaultReportCacheTTL = 7 * 24 * time.Hour
)

// Retry backoff constants for transient failures
// Schedule: 1 min → 5 min → 25 min → 2 hours (capped)
const (
	RetryInitialBackoff = 1 * time.Minute
	RetryBackoffFactor  = 5
	RetryMaxBackoff     = 2 * time.Hour
)

// IsPermanentHTTPStatus returns true for status codes that indicate permanent failure
func IsPermanentHTTPStatus(status int) bool {
	switch status {
	case 404, 410, 451: // Not Found, Gone, Unavailable for Legal Reasons
		return true
	default:
		return false
	}
}

// FetchStatusFromHTTP determines fetch status from HTTP status code
func FetchStatusFromHTTP(status int) string {
	switch {
	case status >= 200 && status < 300:
		return FetchStatusSuccess
	case status == 404 || status == 410:
		return FetchStatusNotFound
	case status == 403 || status == 429:
		return FetchStatusBlocked
	case status == 0:
		return FetchStatusTimeout
	default:
		return FetchStatusError
	}
}

// RetryBackoff returns the wait after the given number of failed attempts.
func RetryBackoff(attempts int) time.Duration {
	d := RetryInitialBackoff
	for i := 1; i < attempts; i++ {
		d *= RetryBackoffFactor
		if d >= RetryMaxBackoff {
			return RetryMaxBackoff
		}
	}
	return d
}

// HashContent computes SHA-256 hash of content for change detection
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// IsExpired returns true if the file cache has expired
func (f *FetchedFile) IsExpired(now time.Time) bool {
	if f.ExpiresAt == nil {
		return false
	}
	return now.After(*f.ExpiresAt)
}

// IsFresh returns true if the file was fetched within maxAge
func (f *FetchedFile) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(f.FetchedAt) < maxAge && !f.IsExpired(now)
}
