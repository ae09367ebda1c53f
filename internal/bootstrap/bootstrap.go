// Package bootstrap wires infrastructure into the core use cases. Both
// binaries (api and worker) build the same App so they agree on schema,
// registry and queue configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/pyrolyze/chartrack/internal/config"
	"github.com/pyrolyze/chartrack/internal/core/ports"
	"github.com/pyrolyze/chartrack/internal/core/usecase"
	"github.com/pyrolyze/chartrack/internal/infrastructure/decode"
	"github.com/pyrolyze/chartrack/internal/infrastructure/normalize"
	"github.com/pyrolyze/chartrack/internal/infrastructure/queue/nats"
	"github.com/pyrolyze/chartrack/internal/infrastructure/repository/postgres"
	"github.com/pyrolyze/chartrack/internal/infrastructure/resilience"
	"github.com/pyrolyze/chartrack/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue

	IngestUC    ports.UploadIngestor
	BackfillJob ports.ComplianceJob
	ReconcileUC ports.ComplianceJob
	StatusUC    ports.StatusService
	BatchUC     ports.BatchService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	registry, err := config.LoadSiteRegistry(cfg.SitesFile)
	if err != nil {
		return nil, fmt.Errorf("load site registry: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	buckets := postgres.NewBucketRepository(db)
	ledger := postgres.NewLedgerRepository(db, executor)
	batches := postgres.NewBatchRepository(db)

	archive, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init upload archive: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ingestUC := usecase.NewIngestUploadUseCase(registry, decode.New(), normalize.New(), buckets, archive, queue)
	backfillJob := usecase.NewBackfillJob(registry, batches, buckets, ledger)
	reconcileJob := usecase.NewReconcileJob(buckets, ledger)
	statusUC := usecase.NewStatusUseCase(registry, batches, ledger)
	batchUC := usecase.NewBatchUseCase(registry, batches)

	return &App{
		Config: cfg,
		Queue:  queue,

		IngestUC:    ingestUC,
		BackfillJob: backfillJob,
		ReconcileUC: reconcileJob,
		StatusUC:    statusUC,
		BatchUC:     batchUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
