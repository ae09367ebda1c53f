package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pyrolyze/chartrack/internal/core/domain"
	"github.com/pyrolyze/chartrack/internal/infrastructure/resilience"
)

// LedgerRepository stores one append-only JSONB entry array per site. The
// append is a single upsert-and-push statement, never read-modify-write, so
// concurrent appends for different batches within a site cannot tear.
//
// Latest-status resolution walks the array in storage order. Array position
// is the source of truth; entries are never re-sorted by decision timestamp
// even where the two orders disagree.
type LedgerRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewLedgerRepository(db *sql.DB, executor *resilience.Executor) *LedgerRepository {
	return &LedgerRepository{db: db, executor: executor}
}

func (r *LedgerRepository) Append(ctx context.Context, site domain.SiteKey, entry domain.StatusEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal status entry: %w", err)
	}

	push := func(callCtx context.Context) error {
		_, execErr := r.db.ExecContext(callCtx, `
INSERT INTO status_ledgers (site, entries, updated_at)
VALUES ($1, jsonb_build_array($2::jsonb), $3)
ON CONFLICT (site)
DO UPDATE SET entries = status_ledgers.entries || EXCLUDED.entries, updated_at = EXCLUDED.updated_at
`, string(site), payload, time.Now().UTC())
		if execErr != nil {
			return fmt.Errorf("push ledger entry: %w", execErr)
		}
		return nil
	}

	if r.executor != nil {
		return r.executor.Execute(ctx, "ledger.append", push, classifyPostgresError)
	}
	return push(ctx)
}

func (r *LedgerRepository) LatestStatus(ctx context.Context, site domain.SiteKey, batchID int64) (*domain.StatusEntry, error) {
	entries, err := r.History(ctx, site)
	if err != nil {
		return nil, err
	}
	return lastForBatch(entries, batchID), nil
}

// LatestStatusAnySite resolves a batch's status without knowing its site. A
// batch only ever lives in one ledger; if stale data ever put it in two, the
// later decision wins.
func (r *LedgerRepository) LatestStatusAnySite(ctx context.Context, batchID int64) (*domain.StatusEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT entries FROM status_ledgers`)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	var best *domain.StatusEntry
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		entries, err := unmarshalEntries(raw)
		if err != nil {
			return nil, err
		}
		candidate := lastForBatch(entries, batchID)
		if candidate == nil {
			continue
		}
		if best == nil || candidate.DecidedAt.After(best.DecidedAt) {
			best = candidate
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledgers: %w", err)
	}
	return best, nil
}

// History returns a site's entries in append order; an absent ledger is an
// empty history.
func (r *LedgerRepository) History(ctx context.Context, site domain.SiteKey) ([]domain.StatusEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT entries FROM status_ledgers WHERE site = $1`, string(site))

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []domain.StatusEntry{}, nil
		}
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return unmarshalEntries(raw)
}

func (r *LedgerRepository) ListSites(ctx context.Context) ([]domain.SiteKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT site FROM status_ledgers ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("list ledger sites: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SiteKey, 0)
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("scan ledger site: %w", err)
		}
		out = append(out, domain.SiteKey(site))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger sites: %w", err)
	}
	return out, nil
}

func unmarshalEntries(raw []byte) ([]domain.StatusEntry, error) {
	var entries []domain.StatusEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal ledger entries: %w", err)
	}
	return entries, nil
}

func lastForBatch(entries []domain.StatusEntry, batchID int64) *domain.StatusEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].BatchID == batchID {
			entry := entries[i]
			return &entry
		}
	}
	return nil
}
