package domain

import (
	"fmt"
	"time"
)

// Domain is the content domain a record belongs to. Each domain gets its own
// canonical dataset and retrieval index.
type Domain string

const (
	DomainEvents   Domain = "events"
	DomainFeatures Domain = "features"
	DomainBalance  Domain = "balance"
	DomainWiki     Domain = "wiki"
)

func (d Domain) Valid() bool {
	switch d {
	case DomainEvents, DomainFeatures, DomainBalance, DomainWiki:
		return true
	default:
		return false
	}
}

func AllDomains() []Domain {
	return []Domain{DomainEvents, DomainFeatures, DomainBalance, DomainWiki}
}

// RawRecord is one fact as scraped, owned by the external adapter layer.
// The core only depends on this shape, never on a source's identity beyond
// the trust-rank lookup.
type RawRecord struct {
	Domain      Domain            `json:"domain"`
	SourceName  string            `json:"source_name"`
	SourceURL   string            `json:"source_url"`
	RetrievedAt time.Time         `json:"retrieved_at"`
	MentionText string            `json:"mention_text,omitempty"`
	EntityType  EntityType        `json:"entity_type,omitempty"`
	LogicalKey  string            `json:"logical_key"`
	Fields      map[string]string `json:"fields"`
}

func (r RawRecord) Citation() Citation {
	return Citation{
		SourceName:  r.SourceName,
		SourceURL:   r.SourceURL,
		RetrievedAt: r.RetrievedAt,
	}
}

// Citation records who said what and when. Sets of citations collapse by
// (SourceName, SourceURL), keeping the latest RetrievedAt.
type Citation struct {
	SourceName  string    `json:"source_name"`
	SourceURL   string    `json:"source_url"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// FieldValue is one reconciled field. A non-empty Value always carries at
// least one citation; losing candidates keep their citations attached too.
type FieldValue struct {
	Value      string     `json:"value"`
	SourceName string     `json:"source_name"`
	Citations  []Citation `json:"citations"`
}

// CanonicalRecord is one reconciled fact. Identity is
// (domain, logical key, entity bucket); records are superseded by the next
// pipeline run, never mutated in place.
type CanonicalRecord struct {
	ID         string                `json:"id"`
	Domain     Domain                `json:"domain"`
	LogicalKey string                `json:"logical_key"`
	EntityID   string                `json:"entity_id,omitempty"`
	EntityKey  string                `json:"entity_key"`
	Fields     map[string]FieldValue `json:"fields"`
	Citations  []Citation            `json:"citations"`
}

// CanonicalID derives the record identity. entityKey is either a resolved
// entity id or the "~"-prefixed normalized mention bucket for unresolved ones.
func CanonicalID(d Domain, logicalKey, entityKey string) string {
	return fmt.Sprintf("%s:%s:%s", d, logicalKey, entityKey)
}

// Diagnostic reports a per-record skip without aborting the batch.
type Diagnostic struct {
	Code       string `json:"code"`
	Detail     string `json:"detail"`
	SourceName string `json:"source_name,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
}

const DiagMalformedRecord = "malformed_record"
