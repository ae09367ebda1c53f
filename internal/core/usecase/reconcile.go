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

// ReconcileJob re-evaluates ledger entries stuck at pending once more bucket
// data has arrived. It scans by ledger entry rather than by batch, so it also
// resolves batches that only later became attributable to a site.
type ReconcileJob struct {
	buckets ports.BucketStore
	ledger  ports.StatusLedger
	now     func() time.Time
}

func NewReconcileJob(buckets ports.BucketStore, ledger ports.StatusLedger) *ReconcileJob {
	return &ReconcileJob{
		buckets: buckets,
		ledger:  ledger,
		now:     time.Now,
	}
}

// Run returns how many pending batches moved to a decided verdict. Entries
// that evaluate to pending again are left untouched.
func (j *ReconcileJob) Run(ctx context.Context) (int, error) {
	sites, err := j.ledger.ListSites(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ledger sites: %w", err)
	}

	updated := 0
	for _, site := range sites {
		n, err := j.reconcileSite(ctx, site)
		if err != nil {
			slog.Warn("reconcile_site_failed", "site", site, "error", err)
			continue
		}
		updated += n
	}
	return updated, nil
}

func (j *ReconcileJob) reconcileSite(ctx context.Context, site domain.SiteKey) (int, error) {
	entries, err := j.ledger.History(ctx, site)
	if err != nil {
		return 0, fmt.Errorf("read ledger history: %w", err)
	}

	// Append order is authoritative: a later walk overwrites an earlier
	// entry for the same batch regardless of decision timestamps.
	latestByBatch := make(map[int64]domain.StatusEntry)
	order := make([]int64, 0)
	for _, entry := range entries {
		if _, seen := latestByBatch[entry.BatchID]; !seen {
			order = append(order, entry.BatchID)
		}
		latestByBatch[entry.BatchID] = entry
	}

	updated := 0
	for _, batchID := range order {
		last := latestByBatch[batchID]
		if last.Verdict != domain.VerdictPending {
			continue
		}
		n, err := j.reconcileEntry(ctx, site, last)
		if err != nil {
			slog.Warn("reconcile_entry_failed", "site", site, "batch_id", batchID, "error", err)
			continue
		}
		updated += n
	}
	return updated, nil
}

func (j *ReconcileJob) reconcileEntry(ctx context.Context, site domain.SiteKey, last domain.StatusEntry) (int, error) {
	// Re-read right before evaluating: an overlapping backfill run may have
	// already decided this batch.
	fresh, err := j.ledger.LatestStatus(ctx, site, last.BatchID)
	if err != nil {
		return 0, fmt.Errorf("re-read latest status: %w", err)
	}
	if fresh == nil || fresh.Verdict != domain.VerdictPending {
		return 0, nil
	}

	values, err := j.buckets.Get(ctx, site, last.ProductionDay)
	if err != nil {
		return 0, fmt.Errorf("read bucket %s/%s: %w", site, last.ProductionDay, err)
	}

	verdict, reason := domain.Evaluate(values)
	if verdict == domain.VerdictPending {
		return 0, nil
	}

	entry := domain.StatusEntry{
		ID:            uuid.NewString(),
		BatchID:       last.BatchID,
		Verdict:       verdict,
		Reason:        reason,
		ProductionDay: last.ProductionDay,
		DecidedAt:     j.now().UTC(),
		Source:        domain.SourceReconciliation,
	}
	if err := j.ledger.Append(ctx, site, entry); err != nil {
		return 0, fmt.Errorf("append status entry: %w", err)
	}
	return 1, nil
}
