package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

func seedPending(ledger *memLedger, site domain.SiteKey, batchID int64, day string) {
	ledger.entries[site] = append(ledger.entries[site], domain.StatusEntry{
		ID:            "seed",
		BatchID:       batchID,
		Verdict:       domain.VerdictPending,
		Reason:        domain.ReasonNoData,
		ProductionDay: day,
		DecidedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Source:        domain.SourceBackfill,
	})
}

func TestReconcileResolvesPendingOnceDataArrives(t *testing.T) {
	ledger := newMemLedger()
	seedPending(ledger, "ilmtal", 1, "2024-03-01")
	buckets := newMemBuckets()
	buckets.values["ilmtal/2024-03-01"] = []float64{650, 660}

	job := NewReconcileJob(buckets, ledger)
	updated, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	history, _ := ledger.History(context.Background(), "ilmtal")
	if len(history) != 2 {
		t.Fatalf("history = %d entries, want 2", len(history))
	}
	last := history[len(history)-1]
	if last.Verdict != domain.VerdictApproved {
		t.Fatalf("verdict = %s, want approved", last.Verdict)
	}
	if last.Source != domain.SourceReconciliation {
		t.Fatalf("source = %s", last.Source)
	}
	if last.ProductionDay != "2024-03-01" {
		t.Fatalf("production day = %s, want the original entry's day", last.ProductionDay)
	}
}

func TestReconcileLeavesStillPendingUntouched(t *testing.T) {
	ledger := newMemLedger()
	seedPending(ledger, "ilmtal", 1, "2024-03-01")

	job := NewReconcileJob(newMemBuckets(), ledger)
	updated, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
	history, _ := ledger.History(context.Background(), "ilmtal")
	if len(history) != 1 {
		t.Fatalf("history = %d entries, want 1", len(history))
	}
}

func TestReconcileUsesAppendOrderForLatest(t *testing.T) {
	ledger := newMemLedger()
	// appended later but with an earlier decision timestamp; append order
	// still wins, so batch 1 counts as approved
	ledger.entries["ilmtal"] = []domain.StatusEntry{
		{
			ID: "a", BatchID: 1, Verdict: domain.VerdictPending,
			ProductionDay: "2024-03-01",
			DecidedAt:     time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: "b", BatchID: 1, Verdict: domain.VerdictApproved,
			ProductionDay: "2024-03-01",
			DecidedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	buckets := newMemBuckets()
	buckets.values["ilmtal/2024-03-01"] = []float64{650}

	job := NewReconcileJob(buckets, ledger)
	updated, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if updated != 0 {
		t.Fatalf("updated = %d, want 0: batch already decided by append order", updated)
	}
}

func TestReconcileSweepsAllLedgerSites(t *testing.T) {
	ledger := newMemLedger()
	seedPending(ledger, "ilmtal", 1, "2024-03-01")
	seedPending(ledger, "schwand", 2, "2024-03-02")
	buckets := newMemBuckets()
	buckets.values["ilmtal/2024-03-01"] = []float64{650}
	buckets.values["schwand/2024-03-02"] = []float64{900}

	job := NewReconcileJob(buckets, ledger)
	updated, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if updated != 2 {
		t.Fatalf("updated = %d, want 2", updated)
	}

	ilm, _ := ledger.LatestStatus(context.Background(), "ilmtal", 1)
	if ilm.Verdict != domain.VerdictApproved {
		t.Fatalf("ilmtal verdict = %s", ilm.Verdict)
	}
	schw, _ := ledger.LatestStatus(context.Background(), "schwand", 2)
	if schw.Verdict != domain.VerdictFlagged {
		t.Fatalf("schwand verdict = %s", schw.Verdict)
	}
}

func TestReconcileRerunAppendsNothing(t *testing.T) {
	ledger := newMemLedger()
	seedPending(ledger, "ilmtal", 1, "2024-03-01")
	buckets := newMemBuckets()
	buckets.values["ilmtal/2024-03-01"] = []float64{650}

	job := NewReconcileJob(buckets, ledger)
	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	updated, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if updated != 0 {
		t.Fatalf("second run updated = %d, want 0", updated)
	}
}
