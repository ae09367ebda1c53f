package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts the batch and fills in its database-assigned id. Ids are
// monotonic; site and production day are never updated afterwards.
func (r *BatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO batches (site, production_day, weight_kg, moisture_pct, retired_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, string(batch.Site), batch.ProductionDay, batch.WeightKg, batch.MoisturePct, batch.RetiredAt, batch.CreatedAt, batch.UpdatedAt)

	if err := row.Scan(&batch.ID); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id int64) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, site, production_day, weight_kg, moisture_pct, retired_at, created_at, updated_at
FROM batches
WHERE id = $1
`, id)

	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", fmt.Errorf("id=%d", id))
		}
		return nil, fmt.Errorf("get batch by id: %w", err)
	}
	return &batch, nil
}

// ListActive returns unretired batches in id (creation) order.
func (r *BatchRepository) ListActive(ctx context.Context) ([]domain.Batch, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, site, production_day, weight_kg, moisture_pct, retired_at, created_at, updated_at
FROM batches
WHERE retired_at IS NULL
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Batch, 0)
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return out, nil
}

func (r *BatchRepository) UpdateAttributes(ctx context.Context, id int64, weightKg, moisturePct float64) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE batches
SET weight_kg = $2, moisture_pct = $3, updated_at = $4
WHERE id = $1 AND retired_at IS NULL
`, id, weightKg, moisturePct, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update batch attributes: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update batch rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "update batch attributes", fmt.Errorf("id=%d", id))
	}
	return nil
}

func (r *BatchRepository) Retire(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
UPDATE batches
SET retired_at = $2, updated_at = $2
WHERE id = $1 AND retired_at IS NULL
`, id, now)
	if err != nil {
		return fmt.Errorf("retire batch: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("retire batch rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "retire batch", fmt.Errorf("id=%d", id))
	}
	return nil
}

type batchScanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row batchScanner) (domain.Batch, error) {
	var batch domain.Batch
	var site string
	err := row.Scan(
		&batch.ID,
		&site,
		&batch.ProductionDay,
		&batch.WeightKg,
		&batch.MoisturePct,
		&batch.RetiredAt,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	)
	if err != nil {
		return domain.Batch{}, err
	}
	batch.Site = domain.SiteKey(site)
	return batch, nil
}
