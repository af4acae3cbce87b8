package bootstrap

import (
	"context"
	"fmt"

	"github.com/pogodigest/pogodigest/internal/config"
	"github.com/pogodigest/pogodigest/internal/core/index"
	"github.com/pogodigest/pogodigest/internal/core/ports"
	"github.com/pogodigest/pogodigest/internal/core/usecase"
	"github.com/pogodigest/pogodigest/internal/infrastructure/dictionary/yamlfile"
	"github.com/pogodigest/pogodigest/internal/infrastructure/queue/nats"
	"github.com/pogodigest/pogodigest/internal/infrastructure/repository/postgres"
	"github.com/pogodigest/pogodigest/internal/infrastructure/resilience"
	"github.com/pogodigest/pogodigest/internal/infrastructure/snapshot/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Canonical ports.CanonicalReader

	IngestUC   ports.RecordIngestor
	PipelineUC ports.PipelineRunner
	SearchUC   ports.SearchService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	rawRepo := postgres.NewRawRecordRepository(db)
	canonicalRepo := postgres.NewCanonicalRepository(db)
	runRepo := postgres.NewRunRepository(db)

	snapshots, err := localfs.New(cfg.SnapshotPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init snapshot store: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	configSource := yamlfile.New(cfg.PipelineConfigPath)
	pipelineCfg, err := configSource.Load(ctx)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("load pipeline config: %w", err)
	}

	ingestUC := usecase.NewIngestRecordsUseCase(rawRepo, queue)
	pipelineUC := usecase.NewPipelineUseCase(configSource, rawRepo, canonicalRepo, runRepo, snapshots)
	searchUC := usecase.NewSearchUseCase(snapshots, index.NewQueryEngine(index.NewTokenizer(pipelineCfg.StopWords)))

	return &App{
		Config: cfg,

		Queue:     queue,
		Canonical: canonicalRepo,

		IngestUC:   ingestUC,
		PipelineUC: pipelineUC,
		SearchUC:   searchUC,

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
