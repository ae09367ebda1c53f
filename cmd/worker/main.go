package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pyrolyze/chartrack/internal/bootstrap"
	"github.com/pyrolyze/chartrack/internal/config"
	"github.com/pyrolyze/chartrack/internal/core/ports"
	"github.com/pyrolyze/chartrack/internal/observability/logging"
	"github.com/pyrolyze/chartrack/internal/observability/metrics"
)

// The worker runs the two automated certification jobs: a backfill pass for
// every upload-processed event, and a reconciliation sweep on a fixed
// interval. Both jobs are idempotent, so overlapping triggers are harmless.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	jobMetrics := metrics.NewJobMetrics("worker")
	go serveMetrics(ctx, cfg.WorkerMetricsPort, jobMetrics)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runReconcileLoop(ctx, app.ReconcileUC, jobMetrics, time.Duration(cfg.ReconcileIntervalMinutes)*time.Minute)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeUploadProcessed(ctx, func(handlerCtx context.Context, uploadID string) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()
		return runJob(runCtx, app.BackfillJob, jobMetrics, "backfill", uploadID)
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		stop()
	}

	wg.Wait()
}

func runReconcileLoop(ctx context.Context, job ports.ComplianceJob, jobMetrics *metrics.JobMetrics, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			_ = runJob(runCtx, job, jobMetrics, "reconciliation", "")
			cancel()
		}
	}
}

func runJob(ctx context.Context, job ports.ComplianceJob, jobMetrics *metrics.JobMetrics, name, uploadID string) error {
	jobMetrics.StartRun()
	start := time.Now()

	appended, err := job.Run(ctx)
	duration := time.Since(start)
	jobMetrics.FinishRun("worker", name, duration, appended, err)

	if err != nil {
		slog.Error("job_run_failed", "job", name, "upload_id", uploadID, "error", err)
		return err
	}
	slog.Info("job_run_completed", "job", name, "upload_id", uploadID, "appended", appended, "duration_ms", duration.Milliseconds())
	return nil
}

func serveMetrics(ctx context.Context, port string, jobMetrics *metrics.JobMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", jobMetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("worker_metrics_server_failed", "error", err)
	}
}
