package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pyrolyze/chartrack/internal/core/domain"
	"github.com/pyrolyze/chartrack/internal/core/ports"
)

// BackfillJob assigns a first or updated verdict to every batch that is not
// already settled. It runs after each upload and on demand, so every step is
// idempotent: re-running with no new bucket data appends nothing.
type BackfillJob struct {
	registry *domain.SiteRegistry
	batches  ports.BatchStore
	buckets  ports.BucketStore
	ledger   ports.StatusLedger
	now      func() time.Time
}

func NewBackfillJob(
	registry *domain.SiteRegistry,
	batches ports.BatchStore,
	buckets ports.BucketStore,
	ledger ports.StatusLedger,
) *BackfillJob {
	return &BackfillJob{
		registry: registry,
		batches:  batches,
		buckets:  buckets,
		ledger:   ledger,
		now:      time.Now,
	}
}

// Run walks all unretired batches and returns how many ledger entries were
// appended. A storage failure on one batch is logged and isolated; the
// remaining batches are still attempted.
func (j *BackfillJob) Run(ctx context.Context) (int, error) {
	batches, err := j.batches.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list batches for backfill: %w", err)
	}

	appended := 0
	for _, batch := range batches {
		n, err := j.processBatch(ctx, batch)
		if err != nil {
			slog.Warn("backfill_batch_failed", "batch_id", batch.ID, "site", batch.Site, "error", err)
			continue
		}
		appended += n
	}
	return appended, nil
}

func (j *BackfillJob) processBatch(ctx context.Context, batch domain.Batch) (int, error) {
	site, ok := j.registry.Get(batch.Site)
	if !ok {
		// Unknown site reference: skip, never default. A later registry
		// update lets reconciliation pick the batch up again.
		return 0, nil
	}

	// Latest status is re-read per batch inside the run; overlapping job
	// runs stay idempotent only because nothing is cached across batches.
	latest, err := j.ledger.LatestStatus(ctx, site.Key, batch.ID)
	if err != nil {
		return 0, fmt.Errorf("read latest status: %w", err)
	}
	if latest != nil && latest.Verdict.TerminalForAutomation() {
		return 0, nil
	}

	values, err := j.buckets.Get(ctx, site.Key, batch.ProductionDay)
	if err != nil {
		return 0, fmt.Errorf("read bucket %s/%s: %w", site.Key, batch.ProductionDay, err)
	}

	verdict, reason := domain.Evaluate(values)
	if verdict == domain.VerdictPending && latest != nil && latest.Verdict == domain.VerdictPending {
		// Still no data; a duplicate pending entry would only pad the ledger.
		return 0, nil
	}

	entry := domain.StatusEntry{
		ID:            uuid.NewString(),
		BatchID:       batch.ID,
		Verdict:       verdict,
		Reason:        reason,
		ProductionDay: batch.ProductionDay,
		DecidedAt:     j.now().UTC(),
		Source:        domain.SourceBackfill,
	}
	if err := j.ledger.Append(ctx, site.Key, entry); err != nil {
		return 0, fmt.Errorf("append status entry: %w", err)
	}
	return 1, nil
}
