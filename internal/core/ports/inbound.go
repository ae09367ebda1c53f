package ports

import (
	"context"
	"io"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

// UploadIngestor is the inbound contract for sensor export uploads.
type UploadIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.UploadReport, error)
}

// ComplianceJob runs one pass of an automated certification job and reports
// how many ledger entries it appended. Safe to invoke repeatedly.
type ComplianceJob interface {
	Run(ctx context.Context) (int, error)
}

// StatusService exposes the ledger read paths and the manual review append.
type StatusService interface {
	AppendManual(ctx context.Context, site domain.SiteKey, batchID int64, verdict domain.Verdict, reason string) (*domain.StatusEntry, error)
	LatestStatus(ctx context.Context, batchID int64) (*domain.StatusEntry, error)
	History(ctx context.Context, site domain.SiteKey) ([]domain.StatusEntry, error)
}

// BatchService is the inbound contract for production logging.
type BatchService interface {
	Create(ctx context.Context, site domain.SiteKey, productionDay string, weightKg, moisturePct float64) (*domain.Batch, error)
	GetByID(ctx context.Context, id int64) (*domain.Batch, error)
	List(ctx context.Context) ([]domain.Batch, error)
	UpdateAttributes(ctx context.Context, id int64, weightKg, moisturePct float64) (*domain.Batch, error)
	Retire(ctx context.Context, id int64) error
}
