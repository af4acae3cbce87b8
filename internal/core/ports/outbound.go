package ports

import (
	"context"
	"time"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/index"
	"github.com/pogodigest/pogodigest/internal/core/merge"
)

// RawRecordStore buffers scraped records between ingestion and pipeline runs.
type RawRecordStore interface {
	SaveBatch(ctx context.Context, records []domain.RawRecord) error
	ListByDomain(ctx context.Context, d domain.Domain) ([]domain.RawRecord, error)
}

// CanonicalStore persists the reconciled dataset. ReplaceDomain swaps a
// domain's full record set atomically: a run's output supersedes the previous
// one, it never patches it.
type CanonicalStore interface {
	ReplaceDomain(ctx context.Context, d domain.Domain, records []domain.CanonicalRecord) error
	GetByID(ctx context.Context, id string) (*domain.CanonicalRecord, error)
}

// RunStore keeps per-domain pipeline run reports.
type RunStore interface {
	SaveReport(ctx context.Context, report *domain.RunReport) error
}

// MessageQueue carries rebuild-requested events from the api to the worker.
type MessageQueue interface {
	PublishRebuildRequested(ctx context.Context, d domain.Domain) error
	SubscribeRebuildRequested(ctx context.Context, handler func(context.Context, domain.Domain) error) error
}

// PipelineConfig is the externally supplied configuration snapshot consumed
// by one run: the alias table, per-domain source trust ranking and index
// tuning. It is loaded once per run and frozen for its duration.
type PipelineConfig struct {
	Aliases    []domain.Alias
	TrustRanks merge.TrustRanks
	StopWords  []string
	TextFields []string
	MinTokens  int
}

// ConfigSource loads the pipeline configuration. A load failure is fatal for
// the run: a corrupt dictionary would silently mis-resolve every record.
type ConfigSource interface {
	Load(ctx context.Context) (*PipelineConfig, error)
}

// IndexSnapshotStore persists built indices for the query-serving process.
type IndexSnapshotStore interface {
	Save(ctx context.Context, ix *index.InvertedIndex) error
	Load(ctx context.Context, d domain.Domain) (*index.InvertedIndex, error)
	ModTime(ctx context.Context, d domain.Domain) (time.Time, error)
}
