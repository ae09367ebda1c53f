package ports

import (
	"context"
	"io"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

// BucketStore persists per-(site, day) temperature buckets. AppendValues must
// be a single atomic upsert-and-append; buckets are never rewritten in place.
type BucketStore interface {
	AppendValues(ctx context.Context, site domain.SiteKey, day string, values []float64) error
	Get(ctx context.Context, site domain.SiteKey, day string) ([]float64, error)
}

// StatusLedger is the append-only per-site certification history. Append must
// be atomic under concurrent callers; latest-status resolution follows append
// order, never a re-sort by decision timestamp.
type StatusLedger interface {
	Append(ctx context.Context, site domain.SiteKey, entry domain.StatusEntry) error
	LatestStatus(ctx context.Context, site domain.SiteKey, batchID int64) (*domain.StatusEntry, error)
	LatestStatusAnySite(ctx context.Context, batchID int64) (*domain.StatusEntry, error)
	History(ctx context.Context, site domain.SiteKey) ([]domain.StatusEntry, error)
	ListSites(ctx context.Context) ([]domain.SiteKey, error)
}

// BatchStore persists production batches.
type BatchStore interface {
	Create(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, id int64) (*domain.Batch, error)
	ListActive(ctx context.Context) ([]domain.Batch, error)
	UpdateAttributes(ctx context.Context, id int64, weightKg, moisturePct float64) error
	Retire(ctx context.Context, id int64) error
}

// ObjectStorage archives raw upload files verbatim.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload-processed events that trigger the
// fire-and-forget backfill run.
type MessageQueue interface {
	PublishUploadProcessed(ctx context.Context, uploadID string) error
	SubscribeUploadProcessed(ctx context.Context, handler func(context.Context, string) error) error
}

// UploadDecoder turns a raw upload body into string-keyed row maps. The
// decoder tolerates the inconsistent schemas of multi-source plant exports;
// schema interpretation belongs to the normalizer.
type UploadDecoder interface {
	Decode(filename string, body io.Reader) ([]map[string]string, error)
}

// RowNormalizer maps raw row maps into the canonical row schema. Total over
// arbitrary input: malformed values pass through for downstream stages to
// skip explicitly.
type RowNormalizer interface {
	Normalize(raw map[string]string) domain.NormalizedRow
}
