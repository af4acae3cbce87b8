package merge

import (
	"sort"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

// citationSet collapses citations by (source name, source URL), keeping the
// latest RetrievedAt per pair. Re-ingesting the same page on a later run
// therefore refreshes the timestamp instead of duplicating the citation.
type citationSet struct {
	byKey map[[2]string]domain.Citation
}

func newCitationSet() *citationSet {
	return &citationSet{byKey: make(map[[2]string]domain.Citation, 4)}
}

func (s *citationSet) add(c domain.Citation) {
	key := [2]string{c.SourceName, c.SourceURL}
	if existing, ok := s.byKey[key]; ok && !c.RetrievedAt.After(existing.RetrievedAt) {
		return
	}
	s.byKey[key] = c
}

// sorted returns the set as a deterministic slice ordered by
// (source name, source URL).
func (s *citationSet) sorted() []domain.Citation {
	out := make([]domain.Citation, 0, len(s.byKey))
	for _, c := range s.byKey {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceName != out[j].SourceName {
			return out[i].SourceName < out[j].SourceName
		}
		return out[i].SourceURL < out[j].SourceURL
	})
	return out
}
