package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetFetchedFileByURL retrieves a cached file by URL
func (db *DB) GetFetchedFileByURL(ctx context.Context, fileURL string) (*FetchedFile, error) {
	var f FetchedFile
	var body []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, body_zstd, content_hash, http_status, fetch_status, error_message,
		        is_permanent_failure, retry_count, retry_after,
		        fetched_at, expires_at, last_accessed_at, created_at, updated_at
		 FROM fetched_files WHERE url = $1`,
		fileURL,
	).Scan(&f.ID, &f.URL, &body, &f.ContentHash, &f.HTTPStatus, &f.FetchStatus, &f.ErrorMessage,
		&f.IsPermanentFailure, &f.RetryCount, &f.RetryAfter,
		&f.FetchedAt, &f.ExpiresAt, &f.LastAccessedAt, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fetched file: %w", err)
	}
	if body != nil {
		raw, err := Decompress(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read cached body for %s: %w", fileURL, err)
		}
		s := string(raw)
		f.Body = &s
	}
	return &f, nil
}

// GetFreshFetchedFile returns a cached file only if it is within maxAge and was
// fetched successfully.
func (db *DB) GetFreshFetchedFile(ctx context.Context, fileURL string, maxAge time.Duration) (*FetchedFile, error) {
	f, err := db.GetFetchedFileByURL(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}

	if !f.IsFresh(time.Now(), maxAge) {
		return nil, nil // Stale, should re-fetch
	}
	if f.FetchStatus != FetchStatusSuccess {
		return nil, nil
	}

	_ = db.TouchFetchedFile(ctx, f.ID)
	return f, nil
}

// ShouldSkipURL checks if a URL should be skipped due to previous permanent failure
// or an active retry backoff.
func (db *DB) ShouldSkipURL(ctx context.Context, fileURL string) (bool, string, error) {
	f, err := db.GetFetchedFileByURL(ctx, fileURL)
	if err != nil {
		return false, "", err
	}
	if f == nil {
		return false, "", nil // Never tried, don't skip
	}

	if f.IsPermanentFailure {
		reason := "permanent failure"
		if f.ErrorMessage != nil {
			reason = *f.ErrorMessage
		}
		return true, reason, nil
	}

	if f.RetryAfter != nil && time.Now().Before(*f.RetryAfter) {
		return true, "retry backoff", nil
	}

	return false, "", nil
}

// UpsertFetchedFile stores a completed fetch. 4xx responses are stored as
// successful fetches because their status is itself the answer.
func (db *DB) UpsertFetchedFile(ctx context.Context, f *FetchedFile, ttl time.Duration) error {
	var body []byte
	var contentHash *string
	if f.Body != nil {
		compressed, err := Compress([]byte(*f.Body))
		if err != nil {
			return err
		}
		body = compressed
		hash := HashContent(*f.Body)
		contentHash = &hash
	}

	if ttl <= 0 {
		ttl = DefaultFileCacheTTL
	}
	expiresAt := time.Now().Add(ttl)

	fetchStatus := f.FetchStatus
	if fetchStatus == "" {
		fetchStatus = FetchStatusSuccess
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO fetched_files (url, body_zstd, content_hash, http_status, fetch_status,
		                            error_message, is_permanent_failure, retry_count, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 0, NOW(), $8)
		 ON CONFLICT (url) DO UPDATE SET
		     body_zstd = $2,
		     content_hash = $3,
		     http_status = $4,
		     fetch_status = $5,
		     error_message = $6,
		     is_permanent_failure = $7,
		     retry_count = 0,
		     retry_after = NULL,
		     fetched_at = NOW(),
		     expires_at = $8,
		     updated_at = NOW()
		 RETURNING id, fetched_at, expires_at, created_at, updated_at`,
		f.URL, body, contentHash, f.HTTPStatus, fetchStatus,
		f.ErrorMessage, f.IsPermanentFailure, expiresAt,
	).Scan(&f.ID, &f.FetchedAt, &f.ExpiresAt, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert fetched file: %w", err)
	}
	f.ContentHash = contentHash
	f.FetchStatus = fetchStatus
	return nil
}

// RecordFailedFetch records a failed fetch attempt with exponential backoff
func (db *DB) RecordFailedFetch(ctx context.Context, fileURL string, httpStatus int, errorMsg string) error {
	fetchStatus := FetchStatusFromHTTP(httpStatus)
	isPermanent := IsPermanentHTTPStatus(httpStatus)

	// Backoff: 1 min * 5^retry_count, capped at 2 hours. Permanent failures never retry.
	_, err := db.pool.Exec(ctx,
		`INSERT INTO fetched_files (url, http_status, fetch_status, error_message, is_permanent_failure, retry_count, retry_after, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, 1,
		         CASE WHEN $5 THEN NULL ELSE NOW() + INTERVAL '1 minute' END,
		         NOW())
		 ON CONFLICT (url) DO UPDATE SET
		     http_status = $2,
		     fetch_status = $3,
		     error_message = $4,
		     is_permanent_failure = $5 OR fetched_files.is_permanent_failure,
		     retry_count = fetched_files.retry_count + 1,
		     retry_after = CASE
		         WHEN $5 OR fetched_files.is_permanent_failure THEN NULL
		         ELSE NOW() + LEAST(
		             INTERVAL '1 minute' * POWER(5, LEAST(fetched_files.retry_count, 3)),
		             INTERVAL '2 hours'
		         )
		     END,
		     fetched_at = NOW(),
		     updated_at = NOW()`,
		fileURL, httpStatus, fetchStatus, errorMsg, isPermanent,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}

// TouchFetchedFile updates the last_accessed_at timestamp
func (db *DB) TouchFetchedFile(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE fetched_files SET last_accessed_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch fetched file: %w", err)
	}
	return nil
}

// ExpireFetchedFile marks a cached file as stale, forcing a re-fetch.
func (db *DB) ExpireFetchedFile(ctx context.Context, fileURL string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE fetched_files SET expires_at = NOW() - INTERVAL '1 hour', updated_at = NOW() WHERE url = $1`,
		fileURL,
	)
	if err != nil {
		return fmt.Errorf("failed to expire fetched file: %w", err)
	}
	return nil
}
