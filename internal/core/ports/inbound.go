package ports

import (
	"context"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

// RecordIngestor is the inbound contract for accepting scraped raw records.
type RecordIngestor interface {
	IngestBatch(ctx context.Context, records []domain.RawRecord) (*domain.BatchReceipt, error)
}

// PipelineRunner rebuilds one domain's canonical dataset and index.
type PipelineRunner interface {
	RunDomain(ctx context.Context, d domain.Domain) (*domain.RunReport, error)
}

// SearchService answers ranked free-text queries. An empty domain lets the
// service route the query by its keywords.
type SearchService interface {
	Search(ctx context.Context, query string, d domain.Domain, limit int) (*domain.SearchResult, error)
}

// CanonicalReader is the inbound read model for canonical records.
type CanonicalReader interface {
	GetByID(ctx context.Context, id string) (*domain.CanonicalRecord, error)
}
