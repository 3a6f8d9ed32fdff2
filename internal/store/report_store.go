package store

import (
	"context"

	"github.com/angeloszaimis/status-checker/internal/report"
)

// ReportStore persists run documents by run ID.
type ReportStore interface {
	SaveReport(ctx context.Context, doc report.Document) error
	GetReport(ctx context.Context, runID string) (report.Document, bool, error)
}
