package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

// BucketRepository stores per-(site, day) temperature buckets as JSONB value
// arrays. Appending is a single upsert statement using the JSONB `||`
// concatenation, so concurrent uploads for the same day never lose values.
type BucketRepository struct {
	db *sql.DB
}

func NewBucketRepository(db *sql.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

func (r *BucketRepository) AppendValues(ctx context.Context, site domain.SiteKey, day string, values []float64) error {
	if len(values) == 0 {
		return nil
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal bucket values: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO temperature_buckets (site, day, temps, updated_at)
VALUES ($1, $2, $3::jsonb, $4)
ON CONFLICT (site, day)
DO UPDATE SET temps = temperature_buckets.temps || EXCLUDED.temps, updated_at = EXCLUDED.updated_at
`, string(site), day, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append bucket values: %w", err)
	}
	return nil
}

// Get returns the bucket's values, or an empty slice when no bucket exists
// for the day yet; absence is a pending verdict, not an error.
func (r *BucketRepository) Get(ctx context.Context, site domain.SiteKey, day string) ([]float64, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT temps FROM temperature_buckets WHERE site = $1 AND day = $2
`, string(site), day)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bucket: %w", err)
	}

	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("unmarshal bucket values: %w", err)
	}
	return values, nil
}
