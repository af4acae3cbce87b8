package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/ports"
)

// IngestRecordsUseCase accepts scraped raw-record batches, buffers them and
// schedules a rebuild for every touched domain. Per-record validation
// failures are reported and skipped; they never fail the batch.
type IngestRecordsUseCase struct {
	rawStore ports.RawRecordStore
	queue    ports.MessageQueue
}

func NewIngestRecordsUseCase(rawStore ports.RawRecordStore, queue ports.MessageQueue) *IngestRecordsUseCase {
	return &IngestRecordsUseCase{rawStore: rawStore, queue: queue}
}

func (uc *IngestRecordsUseCase) IngestBatch(ctx context.Context, records []domain.RawRecord) (*domain.BatchReceipt, error) {
	receipt := &domain.BatchReceipt{}
	accepted := make([]domain.RawRecord, 0, len(records))
	touched := make(map[domain.Domain]struct{})

	for _, rec := range records {
		if !rec.Domain.Valid() || rec.LogicalKey == "" {
			receipt.Skipped++
			receipt.Diagnostics = append(receipt.Diagnostics, domain.Diagnostic{
				Code:       domain.DiagMalformedRecord,
				Detail:     fmt.Sprintf("domain=%q logical_key=%q", rec.Domain, rec.LogicalKey),
				SourceName: rec.SourceName,
				SourceURL:  rec.SourceURL,
			})
			continue
		}
		accepted = append(accepted, rec)
		touched[rec.Domain] = struct{}{}
	}

	if len(accepted) > 0 {
		if err := uc.rawStore.SaveBatch(ctx, accepted); err != nil {
			return nil, fmt.Errorf("save raw record batch: %w", err)
		}
	}

	receipt.Accepted = len(accepted)
	receipt.Domains = sortedDomains(touched)
	for _, d := range receipt.Domains {
		if err := uc.queue.PublishRebuildRequested(ctx, d); err != nil {
			return nil, fmt.Errorf("publish rebuild event for %s: %w", d, err)
		}
	}
	return receipt, nil
}

func sortedDomains(set map[domain.Domain]struct{}) []domain.Domain {
	out := make([]domain.Domain, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
