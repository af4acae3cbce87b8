package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/index"
	"github.com/pogodigest/pogodigest/internal/core/merge"
	"github.com/pogodigest/pogodigest/internal/core/ports"
	"github.com/pogodigest/pogodigest/internal/core/resolve"
)

// PipelineUseCase runs resolve -> merge -> index for one domain. A config or
// dictionary failure aborts before any merge work; per-record problems are
// carried as diagnostics on the run report instead.
type PipelineUseCase struct {
	configSource ports.ConfigSource
	rawStore     ports.RawRecordStore
	canonical    ports.CanonicalStore
	runs         ports.RunStore
	snapshots    ports.IndexSnapshotStore
}

func NewPipelineUseCase(
	configSource ports.ConfigSource,
	rawStore ports.RawRecordStore,
	canonical ports.CanonicalStore,
	runs ports.RunStore,
	snapshots ports.IndexSnapshotStore,
) *PipelineUseCase {
	return &PipelineUseCase{
		configSource: configSource,
		rawStore:     rawStore,
		canonical:    canonical,
		runs:         runs,
		snapshots:    snapshots,
	}
}

func (uc *PipelineUseCase) RunDomain(ctx context.Context, d domain.Domain) (*domain.RunReport, error) {
	if !d.Valid() {
		return nil, domain.WrapError(domain.ErrMalformedRecord, "run pipeline",
			fmt.Errorf("unknown domain %q", d))
	}

	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		Domain:    d,
		StartedAt: time.Now().UTC(),
	}

	cfg, err := uc.configSource.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pipeline config: %w", err)
	}
	dict, err := resolve.NewDictionary(cfg.Aliases)
	if err != nil {
		return nil, fmt.Errorf("build entity dictionary: %w", err)
	}

	raw, err := uc.rawStore.ListByDomain(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("list raw records for %s: %w", d, err)
	}
	report.RawRecords = len(raw)

	merger := merge.NewMerger(resolve.NewResolver(dict), cfg.TrustRanks)
	records, diagnostics := merger.Merge(raw)
	report.Merged = len(records)
	report.Skipped = len(diagnostics)
	report.Diagnostics = diagnostics
	for _, rec := range records {
		if rec.EntityID == "" {
			report.Unresolved++
		}
	}

	if err := uc.canonical.ReplaceDomain(ctx, d, records); err != nil {
		return nil, fmt.Errorf("replace canonical set for %s: %w", d, err)
	}

	builder := index.NewBuilder(index.NewTokenizer(cfg.StopWords), cfg.TextFields, cfg.MinTokens)
	ix, dropped := builder.Build(d, records)
	report.DocsIndexed = ix.Docs
	report.DocsDropped = dropped
	report.Terms = ix.Terms()

	if err := uc.snapshots.Save(ctx, ix); err != nil {
		return nil, fmt.Errorf("save index snapshot for %s: %w", d, err)
	}

	report.FinishedAt = time.Now().UTC()
	if err := uc.runs.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save run report for %s: %w", d, err)
	}
	return report, nil
}
