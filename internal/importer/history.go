package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit is the page size for run-history queries when the
// caller does not ask for one.
const DefaultHistoryLimit = 50

// RunRecord is the durable summary of a finished batch run: the counts and
// per-row errors of its BatchResult plus run identity and timing.
type RunRecord struct {
	ID         uuid.UUID     `json:"id"`
	CompanyID  uuid.UUID     `json:"companyId"`
	Kind       ImportKind    `json:"kind"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Duplicates int           `json:"duplicates"`
	Errors     []RowError    `json:"errors"`
	Duration   time.Duration `json:"durationMs"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// HistoryStore persists run records. Recording is best-effort: a history
// write failure never fails the run it describes.
type HistoryStore interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	RunHistory(ctx context.Context, companyID uuid.UUID, limit int) ([]RunRecord, error)
}
