package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fieldops/server/internal/importer"
)

// RecordRun inserts the summary of a settled batch run. Row errors are
// stored as a JSONB document; duration is stored in milliseconds.
func (s *Store) RecordRun(ctx context.Context, rec importer.RunRecord) error {
	errorsJSON, err := json.Marshal(rec.Errors)
	if err != nil {
		return fmt.Errorf("marshal run errors: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO import_runs
		   (id, company_id, kind, total, successful, failed, duplicates, errors, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.CompanyID, string(rec.Kind), rec.Total, rec.Successful,
		rec.Failed, rec.Duplicates, errorsJSON, rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

// RunHistory lists the company's most recent runs, newest first.
func (s *Store) RunHistory(ctx context.Context, companyID uuid.UUID, limit int) ([]importer.RunRecord, error) {
	if limit <= 0 {
		limit = importer.DefaultHistoryLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, kind, total, successful, failed, duplicates,
		        errors, duration_ms, created_at
		 FROM import_runs
		 WHERE company_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	defer rows.Close()

	var out []importer.RunRecord
	for rows.Next() {
		var (
			rec        importer.RunRecord
			kind       string
			errorsJSON []byte
			durationMs int64
			createdAt  pgtype.Timestamptz
		)
		if err := rows.Scan(&rec.ID, &rec.CompanyID, &kind, &rec.Total,
			&rec.Successful, &rec.Failed, &rec.Duplicates,
			&errorsJSON, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}

		rec.Kind = importer.ImportKind(kind)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.CreatedAt = createdAt.Time
		if len(errorsJSON) > 0 {
			if err := json.Unmarshal(errorsJSON, &rec.Errors); err != nil {
				return nil, fmt.Errorf("unmarshal run errors: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
