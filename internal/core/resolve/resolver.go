package resolve

import "github.com/pogodigest/pogodigest/internal/core/domain"

// Resolver maps free-text entity mentions to canonical entity ids against a
// dictionary snapshot. Resolve is a pure function of its inputs and never
// fails: an unknown or type-mismatched mention is an explicit Unresolved
// outcome, not an error.
type Resolver struct {
	dict *Dictionary
}

func NewResolver(dict *Dictionary) *Resolver {
	return &Resolver{dict: dict}
}

// Resolve looks up the normalized mention. When wantType is non-empty and the
// dictionary entry's type differs, the mention stays unresolved: a silent
// cross-type match would hide an alias-table bug upstream.
func (r *Resolver) Resolve(mentionText string, wantType domain.EntityType) domain.ResolutionResult {
	normalized := NormalizeMention(mentionText)
	if normalized == "" {
		return domain.Unresolved(normalized)
	}

	entry, ok := r.dict.lookup(normalized)
	if !ok {
		return domain.Unresolved(normalized)
	}
	if wantType != "" && entry.entityType != wantType {
		return domain.Unresolved(normalized)
	}
	return domain.Resolved(entry.entityID, entry.entityType, normalized)
}
