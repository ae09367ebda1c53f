package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pyrolyze/chartrack/internal/core/domain"
	"github.com/pyrolyze/chartrack/internal/core/ports"
)

// StatusUseCase exposes the ledger read paths and the manual review append.
// Manual appends go through the identical atomic append contract as the
// automated jobs; which verdict transitions are sensible is review policy and
// is not enforced here.
type StatusUseCase struct {
	registry *domain.SiteRegistry
	batches  ports.BatchStore
	ledger   ports.StatusLedger
	now      func() time.Time
}

func NewStatusUseCase(registry *domain.SiteRegistry, batches ports.BatchStore, ledger ports.StatusLedger) *StatusUseCase {
	return &StatusUseCase{
		registry: registry,
		batches:  batches,
		ledger:   ledger,
		now:      time.Now,
	}
}

func (uc *StatusUseCase) AppendManual(
	ctx context.Context,
	site domain.SiteKey,
	batchID int64,
	verdict domain.Verdict,
	reason string,
) (*domain.StatusEntry, error) {
	if _, ok := uc.registry.Get(site); !ok {
		return nil, domain.WrapError(domain.ErrUnknownSite, "append manual status",
			fmt.Errorf("site %q not in registry", site))
	}
	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch for manual status: %w", err)
	}
	if batch.Site != site {
		return nil, domain.WrapError(domain.ErrInvalidInput, "append manual status",
			fmt.Errorf("batch %d belongs to site %q, not %q", batchID, batch.Site, site))
	}

	entry := domain.StatusEntry{
		ID:            uuid.NewString(),
		BatchID:       batchID,
		Verdict:       verdict,
		Reason:        reason,
		ProductionDay: batch.ProductionDay,
		DecidedAt:     uc.now().UTC(),
		Source:        domain.SourceManual,
	}
	if err := uc.ledger.Append(ctx, site, entry); err != nil {
		return nil, fmt.Errorf("append manual status entry: %w", err)
	}
	return &entry, nil
}

func (uc *StatusUseCase) LatestStatus(ctx context.Context, batchID int64) (*domain.StatusEntry, error) {
	entry, err := uc.ledger.LatestStatusAnySite(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("resolve latest status: %w", err)
	}
	if entry == nil {
		return nil, domain.WrapError(domain.ErrStatusNotFound, "resolve latest status",
			fmt.Errorf("batch %d has no ledger entries", batchID))
	}
	return entry, nil
}

func (uc *StatusUseCase) History(ctx context.Context, site domain.SiteKey) ([]domain.StatusEntry, error) {
	if _, ok := uc.registry.Get(site); !ok {
		return nil, domain.WrapError(domain.ErrUnknownSite, "read status history",
			fmt.Errorf("site %q not in registry", site))
	}
	entries, err := uc.ledger.History(ctx, site)
	if err != nil {
		return nil, fmt.Errorf("read status history: %w", err)
	}
	return entries, nil
}
