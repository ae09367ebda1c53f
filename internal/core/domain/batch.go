package domain

import "time"

// Batch is one certifiable unit of production. Site and production day are
// immutable once the batch is logged; weight and moisture may be corrected
// later. Batches are never deleted, only soft-retired.
type Batch struct {
	ID            int64      `json:"id"`
	Site          SiteKey    `json:"site"`
	ProductionDay string     `json:"production_day"`
	WeightKg      float64    `json:"weight_kg"`
	MoisturePct   float64    `json:"moisture_pct"`
	RetiredAt     *time.Time `json:"retired_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (b Batch) Retired() bool {
	return b.RetiredAt != nil
}
