package resolve

import (
	"fmt"
	"strings"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

type dictEntry struct {
	entityID   string
	entityType domain.EntityType
}

// Dictionary is the frozen alias lookup for one pipeline run. It is built
// once from the externally supplied alias table and read-only afterwards,
// so concurrent readers need no locking.
type Dictionary struct {
	entries map[string]dictEntry
}

// NewDictionary builds the lookup from an ordered alias table. Two entries
// whose normalized surface forms collide with a different entity id or type
// are a data bug in the table and fail the build; duplicates that agree are
// collapsed.
func NewDictionary(aliases []domain.Alias) (*Dictionary, error) {
	entries := make(map[string]dictEntry, len(aliases))
	for _, alias := range aliases {
		surface := NormalizeMention(alias.SurfaceForm)
		if surface == "" || alias.EntityID == "" {
			return nil, domain.WrapError(
				domain.ErrAmbiguousAlias,
				"build dictionary",
				fmt.Errorf("alias with empty surface or entity id: %+v", alias),
			)
		}
		entry := dictEntry{entityID: alias.EntityID, entityType: alias.EntityType}
		if existing, ok := entries[surface]; ok && existing != entry {
			return nil, domain.WrapError(
				domain.ErrAmbiguousAlias,
				"build dictionary",
				fmt.Errorf("surface %q maps to both %s/%s and %s/%s",
					surface, existing.entityID, existing.entityType, entry.entityID, entry.entityType),
			)
		}
		entries[surface] = entry
	}
	return &Dictionary{entries: entries}, nil
}

func (d *Dictionary) Len() int {
	return len(d.entries)
}

func (d *Dictionary) lookup(normalized string) (dictEntry, bool) {
	entry, ok := d.entries[normalized]
	return entry, ok
}

// NormalizeMention is the single surface-form normalization used both when
// loading the alias table and when resolving mentions: trim, casefold and
// collapse internal whitespace.
func NormalizeMention(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
