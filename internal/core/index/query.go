package index

import (
	"errors"
	"sort"
	"strings"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

// QueryEngine ranks documents of one built index against free-text queries.
// It keeps no state between calls and is safe to use concurrently against
// the same immutable index.
type QueryEngine struct {
	tokenizer *Tokenizer
}

func NewQueryEngine(tokenizer *Tokenizer) *QueryEngine {
	return &QueryEngine{tokenizer: tokenizer}
}

// Search scores each document as the sum of tf·idf over query terms present
// in the index; absent terms contribute zero. Results are ordered by score
// descending with doc id ascending as the tie-break, truncated to topK.
// A blank query or topK <= 0 is a caller error, rejected rather than clamped.
func (e *QueryEngine) Search(ix *InvertedIndex, text string, topK int) ([]domain.RankedResult, error) {
	if topK <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "search",
			errors.New("topK must be positive"))
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "search",
			errors.New("empty query text"))
	}

	scores := make(map[string]float64)
	for _, term := range e.tokenizer.Tokenize(text) {
		idf, ok := ix.IDF[term]
		if !ok {
			continue
		}
		for _, p := range ix.Postings[term] {
			scores[p.DocID] += float64(p.TF) * idf
		}
	}

	out := make([]domain.RankedResult, 0, len(scores))
	for docID, score := range scores {
		out = append(out, domain.RankedResult{DocID: docID, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})

	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
