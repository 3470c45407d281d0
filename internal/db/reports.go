package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/geo-scorer/internal/types"
)

// ReportInput is what SaveReport stores.
type ReportInput struct {
	Fingerprint string
	Tier        types.Tier
	URL         string
	ContentHash string
	Report      *types.GeoScoreReport
	TTL         time.Duration
}

// SaveReport caches a report under its fingerprint, replacing any previous entry.
func (db *DB) SaveReport(ctx context.Context, in *ReportInput) (*ReportRecord, error) {
	if in == nil || in.Report == nil {
		return nil, fmt.Errorf("report is required")
	}
	raw, err := json.Marshal(in.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	compressed, err := Compress(raw)
	if err != nil {
		return nil, err
	}

	ttl := in.TTL
	if ttl <= 0 {
		ttl = DefaultReportCacheTTL
	}
	var url *string
	if in.URL != "" {
		url = &in.URL
	}

	rec := &ReportRecord{
		Fingerprint: in.Fingerprint,
		Tier:        string(in.Tier),
		URL:         url,
		ContentHash: in.ContentHash,
		Score:       in.Report.Score,
		MaxScore:    in.Report.MaxScore,
		Grade:       in.Report.Grade,
		ReportJSON:  raw,
		ScoredAt:    in.Report.ScoredAt,
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO geo_reports (fingerprint, tier, url, content_hash, score, max_score, grade,
		                          report_zstd, scored_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (fingerprint) DO UPDATE SET
		     score = $5,
		     max_score = $6,
		     grade = $7,
		     report_zstd = $8,
		     scored_at = $9,
		     expires_at = $10,
		     last_accessed_at = NOW()
		 RETURNING id, expires_at, last_accessed_at, created_at`,
		rec.Fingerprint, rec.Tier, rec.URL, rec.ContentHash, rec.Score, rec.MaxScore, rec.Grade,
		compressed, rec.ScoredAt, time.Now().Add(ttl),
	).Scan(&rec.ID, &rec.ExpiresAt, &rec.LastAccessedAt, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return rec, nil
}

// GetReport returns the cached report for fingerprint, or nil when absent or expired.
func (db *DB) GetReport(ctx context.Context, fingerprint string) (*ReportRecord, error) {
	var rec ReportRecord
	var compressed []byte
	err := db.pool.QueryRow(ctx,
		`UPDATE geo_reports SET last_accessed_at = NOW()
		 WHERE fingerprint = $1 AND expires_at > NOW()
		 RETURNING id, fingerprint, tier, url, content_hash, score, max_score, grade,
		           report_zstd, scored_at, expires_at, last_accessed_at, created_at`,
		fingerprint,
	).Scan(&rec.ID, &rec.Fingerprint, &rec.Tier, &rec.URL, &rec.ContentHash, &rec.Score, &rec.MaxScore,
		&rec.Grade, &compressed, &rec.ScoredAt, &rec.ExpiresAt, &rec.LastAccessedAt, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	rec.ReportJSON, err = Decompress(compressed)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Report decodes the stored document.
func (r *ReportRecord) Report() (*types.GeoScoreReport, error) {
	var report types.GeoScoreReport
	if err := json.Unmarshal(r.ReportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}

// ListReportsByURL returns the latest cached reports for a URL, newest first,
// without their documents.
func (db *DB) ListReportsByURL(ctx context.Context, url string, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, fingerprint, tier, url, content_hash, score, max_score, grade,
		        scored_at, expires_at, last_accessed_at, created_at
		 FROM geo_reports WHERE url = $1
		 ORDER BY scored_at DESC LIMIT $2`,
		url, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRecord
	for rows.Next() {
		var r ReportRecord
		if err := rows.Scan(&r.ID, &r.Fingerprint, &r.Tier, &r.URL, &r.ContentHash, &r.Score, &r.MaxScore,
			&r.Grade, &r.ScoredAt, &r.ExpiresAt, &r.LastAccessedAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteExpiredReports removes expired reports and returns how many were deleted.
func (db *DB) DeleteExpiredReports(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM geo_reports WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reports: %w", err)
	}
	return tag.RowsAffected(), nil
}
