package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pyrolyze/chartrack/internal/core/domain"
	"github.com/pyrolyze/chartrack/internal/core/ports"
)

// BatchUseCase handles production logging. Site and production day are fixed
// at creation; only the physical attributes stay mutable.
type BatchUseCase struct {
	registry *domain.SiteRegistry
	store    ports.BatchStore
}

func NewBatchUseCase(registry *domain.SiteRegistry, store ports.BatchStore) *BatchUseCase {
	return &BatchUseCase{registry: registry, store: store}
}

func (uc *BatchUseCase) Create(
	ctx context.Context,
	site domain.SiteKey,
	productionDay string,
	weightKg, moisturePct float64,
) (*domain.Batch, error) {
	if _, ok := uc.registry.Get(site); !ok {
		return nil, domain.WrapError(domain.ErrUnknownSite, "create batch",
			fmt.Errorf("site %q not in registry", site))
	}
	if _, err := time.Parse("2006-01-02", productionDay); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create batch",
			fmt.Errorf("production day %q is not a YYYY-MM-DD date", productionDay))
	}
	if err := validateAttributes(weightKg, moisturePct); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create batch", err)
	}

	now := time.Now().UTC()
	batch := &domain.Batch{
		Site:          site,
		ProductionDay: productionDay,
		WeightKg:      weightKg,
		MoisturePct:   moisturePct,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.store.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return batch, nil
}

func (uc *BatchUseCase) GetByID(ctx context.Context, id int64) (*domain.Batch, error) {
	return uc.store.GetByID(ctx, id)
}

func (uc *BatchUseCase) List(ctx context.Context) ([]domain.Batch, error) {
	return uc.store.ListActive(ctx)
}

func (uc *BatchUseCase) UpdateAttributes(ctx context.Context, id int64, weightKg, moisturePct float64) (*domain.Batch, error) {
	if err := validateAttributes(weightKg, moisturePct); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update batch attributes", err)
	}
	if err := uc.store.UpdateAttributes(ctx, id, weightKg, moisturePct); err != nil {
		return nil, fmt.Errorf("update batch attributes: %w", err)
	}
	return uc.store.GetByID(ctx, id)
}

func (uc *BatchUseCase) Retire(ctx context.Context, id int64) error {
	if err := uc.store.Retire(ctx, id); err != nil {
		return fmt.Errorf("retire batch: %w", err)
	}
	return nil
}

func validateAttributes(weightKg, moisturePct float64) error {
	if weightKg < 0 {
		return fmt.Errorf("weight must not be negative")
	}
	if moisturePct < 0 || moisturePct > 100 {
		return fmt.Errorf("moisture must be a percentage between 0 and 100")
	}
	return nil
}
