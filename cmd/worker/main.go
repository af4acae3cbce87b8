package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pogodigest/pogodigest/internal/bootstrap"
	"github.com/pogodigest/pogodigest/internal/config"
	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/observability/logging"
	"github.com/pogodigest/pogodigest/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	runTimeout := time.Duration(cfg.RunTimeoutSeconds) * time.Second

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeRebuildRequested(ctx, func(handlerCtx context.Context, d domain.Domain) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, runTimeout)
		defer cancel()

		workerMetrics.StartRun()
		start := time.Now()
		report, err := app.PipelineUC.RunDomain(runCtx, d)
		workerMetrics.FinishRun("worker", d, time.Since(start), err)
		if err != nil {
			slog.Error("pipeline run failed", "domain", d, "error", err)
			return err
		}

		workerMetrics.ObserveRunReport("worker", report)
		slog.Info("pipeline run finished",
			"run_id", report.RunID,
			"domain", report.Domain,
			"raw_records", report.RawRecords,
			"merged", report.Merged,
			"skipped", report.Skipped,
			"unresolved", report.Unresolved,
			"docs_indexed", report.DocsIndexed,
			"docs_dropped", report.DocsDropped,
			"terms", report.Terms,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
