package merge

import (
	"fmt"
	"sort"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/resolve"
)

// TrustRanks is the per-domain source precedence, most trusted first. It is
// configuration consumed by the merger, never computed. Sources missing from
// a domain's list rank below every configured one.
type TrustRanks map[domain.Domain][]string

func (t TrustRanks) rank(d domain.Domain, sourceName string) int {
	ranking := t[d]
	for i, name := range ranking {
		if name == sourceName {
			return i
		}
	}
	return len(ranking)
}

// Merger folds raw records into canonical records with field-level
// provenance. Merging is deterministic: any permutation of the same input
// yields byte-identical output, because conflicts are settled by an explicit
// total order over candidates rather than by arrival order.
type Merger struct {
	resolver *resolve.Resolver
	trust    TrustRanks
}

func NewMerger(resolver *resolve.Resolver, trust TrustRanks) *Merger {
	return &Merger{resolver: resolver, trust: trust}
}

type fieldCandidate struct {
	value    string
	source   string
	rank     int
	citation domain.Citation
}

type recordGroup struct {
	domain     domain.Domain
	logicalKey string
	entityID   string
	entityKey  string
	candidates map[string][]fieldCandidate
	citations  *citationSet
}

// Merge resolves, groups and folds the batch. Malformed records are skipped
// with a diagnostic and never abort the batch. A group whose records carry no
// usable field still emits an all-null canonical record so coverage gaps stay
// visible downstream.
func (m *Merger) Merge(raw []domain.RawRecord) ([]domain.CanonicalRecord, []domain.Diagnostic) {
	groups := make(map[string]*recordGroup, len(raw))
	var diagnostics []domain.Diagnostic

	for _, rec := range raw {
		if err := validateRawRecord(rec); err != nil {
			diagnostics = append(diagnostics, domain.Diagnostic{
				Code:       domain.DiagMalformedRecord,
				Detail:     err.Error(),
				SourceName: rec.SourceName,
				SourceURL:  rec.SourceURL,
			})
			continue
		}

		res := m.resolver.Resolve(rec.MentionText, rec.EntityType)
		id := domain.CanonicalID(rec.Domain, rec.LogicalKey, res.BucketKey())

		group, ok := groups[id]
		if !ok {
			group = &recordGroup{
				domain:     rec.Domain,
				logicalKey: rec.LogicalKey,
				entityID:   res.EntityID,
				entityKey:  res.BucketKey(),
				candidates: make(map[string][]fieldCandidate, len(rec.Fields)),
				citations:  newCitationSet(),
			}
			groups[id] = group
		}

		citation := rec.Citation()
		group.citations.add(citation)
		for name, value := range rec.Fields {
			if value == "" {
				continue
			}
			group.candidates[name] = append(group.candidates[name], fieldCandidate{
				value:    value,
				source:   rec.SourceName,
				rank:     m.trust.rank(rec.Domain, rec.SourceName),
				citation: citation,
			})
		}
	}

	out := make([]domain.CanonicalRecord, 0, len(groups))
	for id, group := range groups {
		out = append(out, m.fold(id, group))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, diagnostics
}

func (m *Merger) fold(id string, group *recordGroup) domain.CanonicalRecord {
	fields := make(map[string]domain.FieldValue, len(group.candidates))
	for name, candidates := range group.candidates {
		fields[name] = chooseField(candidates)
	}

	if group.domain == domain.DomainEvents {
		deriveEventCategory(fields)
	}

	return domain.CanonicalRecord{
		ID:         id,
		Domain:     group.domain,
		LogicalKey: group.logicalKey,
		EntityID:   group.entityID,
		EntityKey:  group.entityKey,
		Fields:     fields,
		Citations:  group.citations.sorted(),
	}
}

// chooseField settles a field conflict by the fixed precedence: trust rank,
// then latest retrievedAt, then lexicographically smallest value. Non-null
// beats null implicitly because null values never become candidates. Every
// contributor's citation is kept on the winning value.
func chooseField(candidates []fieldCandidate) domain.FieldValue {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if !a.citation.RetrievedAt.Equal(b.citation.RetrievedAt) {
			return a.citation.RetrievedAt.After(b.citation.RetrievedAt)
		}
		if a.value != b.value {
			return a.value < b.value
		}
		if a.source != b.source {
			return a.source < b.source
		}
		return a.citation.SourceURL < b.citation.SourceURL
	})

	citations := newCitationSet()
	for _, c := range candidates {
		citations.add(c.citation)
	}

	winner := candidates[0]
	return domain.FieldValue{
		Value:      winner.value,
		SourceName: winner.source,
		Citations:  citations.sorted(),
	}
}

// deriveEventCategory publishes the stable category bucket next to the
// free-form label, inheriting the label's provenance.
func deriveEventCategory(fields map[string]domain.FieldValue) {
	if _, ok := fields["category_normalized"]; ok {
		return
	}
	label, ok := fields["category"]
	if !ok {
		return
	}
	fields["category_normalized"] = domain.FieldValue{
		Value:      NormalizeEventCategory(label.Value),
		SourceName: label.SourceName,
		Citations:  label.Citations,
	}
}

func validateRawRecord(rec domain.RawRecord) error {
	if !rec.Domain.Valid() {
		return domain.WrapError(domain.ErrMalformedRecord, "validate raw record",
			fmt.Errorf("unknown domain %q", rec.Domain))
	}
	if rec.LogicalKey == "" {
		return domain.WrapError(domain.ErrMalformedRecord, "validate raw record",
			fmt.Errorf("missing logical key"))
	}
	return nil
}
