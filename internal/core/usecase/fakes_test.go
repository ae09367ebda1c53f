package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

// memLedger is an in-memory StatusLedger with the same append-order semantics
// as the Postgres implementation.
type memLedger struct {
	entries   map[domain.SiteKey][]domain.StatusEntry
	appendErr error
}

func newMemLedger() *memLedger {
	return &memLedger{entries: make(map[domain.SiteKey][]domain.StatusEntry)}
}

func (l *memLedger) Append(_ context.Context, site domain.SiteKey, entry domain.StatusEntry) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries[site] = append(l.entries[site], entry)
	return nil
}

func (l *memLedger) LatestStatus(_ context.Context, site domain.SiteKey, batchID int64) (*domain.StatusEntry, error) {
	entries := l.entries[site]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].BatchID == batchID {
			entry := entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}

func (l *memLedger) LatestStatusAnySite(ctx context.Context, batchID int64) (*domain.StatusEntry, error) {
	var best *domain.StatusEntry
	for site := range l.entries {
		entry, err := l.LatestStatus(ctx, site, batchID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		if best == nil || entry.DecidedAt.After(best.DecidedAt) {
			best = entry
		}
	}
	return best, nil
}

func (l *memLedger) History(_ context.Context, site domain.SiteKey) ([]domain.StatusEntry, error) {
	out := make([]domain.StatusEntry, len(l.entries[site]))
	copy(out, l.entries[site])
	return out, nil
}

func (l *memLedger) ListSites(_ context.Context) ([]domain.SiteKey, error) {
	sites := make([]domain.SiteKey, 0, len(l.entries))
	for site := range l.entries {
		sites = append(sites, site)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })
	return sites, nil
}

type memBuckets struct {
	values    map[string][]float64
	appended  map[string][]float64
	getErr    error
	appendErr error
}

func newMemBuckets() *memBuckets {
	return &memBuckets{
		values:   make(map[string][]float64),
		appended: make(map[string][]float64),
	}
}

func bucketKey(site domain.SiteKey, day string) string {
	return string(site) + "/" + day
}

func (b *memBuckets) AppendValues(_ context.Context, site domain.SiteKey, day string, values []float64) error {
	if b.appendErr != nil {
		return b.appendErr
	}
	key := bucketKey(site, day)
	b.values[key] = append(b.values[key], values...)
	b.appended[key] = append(b.appended[key], values...)
	return nil
}

func (b *memBuckets) Get(_ context.Context, site domain.SiteKey, day string) ([]float64, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.values[bucketKey(site, day)], nil
}

type batchStoreFake struct {
	batches []domain.Batch
	listErr error
}

func (f *batchStoreFake) Create(_ context.Context, batch *domain.Batch) error {
	batch.ID = int64(len(f.batches) + 1)
	f.batches = append(f.batches, *batch)
	return nil
}

func (f *batchStoreFake) GetByID(_ context.Context, id int64) (*domain.Batch, error) {
	for _, batch := range f.batches {
		if batch.ID == id {
			copyBatch := batch
			return &copyBatch, nil
		}
	}
	return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", errors.New("no such batch"))
}

func (f *batchStoreFake) ListActive(_ context.Context) ([]domain.Batch, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	active := make([]domain.Batch, 0, len(f.batches))
	for _, batch := range f.batches {
		if !batch.Retired() {
			active = append(active, batch)
		}
	}
	return active, nil
}

func (f *batchStoreFake) UpdateAttributes(_ context.Context, id int64, weightKg, moisturePct float64) error {
	for i := range f.batches {
		if f.batches[i].ID == id {
			f.batches[i].WeightKg = weightKg
			f.batches[i].MoisturePct = moisturePct
			return nil
		}
	}
	return domain.WrapError(domain.ErrBatchNotFound, "update batch attributes", errors.New("no such batch"))
}

func (f *batchStoreFake) Retire(_ context.Context, id int64) error {
	for i := range f.batches {
		if f.batches[i].ID == id {
			now := f.batches[i].UpdatedAt
			f.batches[i].RetiredAt = &now
			return nil
		}
	}
	return domain.WrapError(domain.ErrBatchNotFound, "retire batch", errors.New("no such batch"))
}
