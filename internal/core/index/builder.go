package index

import (
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

// Posting is one (document, exact term frequency) pair. Posting lists stay
// sorted by doc id so rebuilt indices are byte-comparable.
type Posting struct {
	DocID string `json:"doc_id"`
	TF    int    `json:"tf"`
}

// InvertedIndex is the immutable per-domain retrieval index. Once built it is
// never mutated; rebuilding is the only way to incorporate new records, and
// concurrent readers need no locking.
type InvertedIndex struct {
	Domain   domain.Domain        `json:"domain"`
	Docs     int                  `json:"docs"`
	Postings map[string][]Posting `json:"postings"`
	IDF      map[string]float64   `json:"idf"`
	DocLens  map[string]int       `json:"doc_lens"`
	BuiltAt  time.Time            `json:"built_at"`
}

func (ix *InvertedIndex) Terms() int {
	return len(ix.Postings)
}

// Builder turns a merged canonical record set into an inverted index. Text
// fields are concatenated in the configured fixed order; documents whose
// token count falls below minTokens are dropped from the index (they remain
// in the canonical dataset) and counted for the run report.
type Builder struct {
	tokenizer *Tokenizer
	fields    []string
	minTokens int
}

func NewBuilder(tokenizer *Tokenizer, textFields []string, minTokens int) *Builder {
	if minTokens < 0 {
		minTokens = 0
	}
	return &Builder{tokenizer: tokenizer, fields: textFields, minTokens: minTokens}
}

type tokenizedDoc struct {
	docID  string
	counts map[string]int
	length int
}

// Build tokenizes documents across a bounded worker pool (per-document work
// shares no state) and serializes before the document-frequency reduction.
func (b *Builder) Build(d domain.Domain, records []domain.CanonicalRecord) (*InvertedIndex, int) {
	docs := make([]tokenizedDoc, len(records))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = len(records)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				docs[i] = b.tokenizeRecord(records[i])
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	ix := &InvertedIndex{
		Domain:   d,
		Postings: make(map[string][]Posting),
		IDF:      make(map[string]float64),
		DocLens:  make(map[string]int),
		BuiltAt:  time.Now().UTC(),
	}

	dropped := 0
	for _, doc := range docs {
		if doc.length < b.minTokens {
			dropped++
			continue
		}
		ix.Docs++
		ix.DocLens[doc.docID] = doc.length
		for term, tf := range doc.counts {
			ix.Postings[term] = append(ix.Postings[term], Posting{DocID: doc.docID, TF: tf})
		}
	}

	// df >= 1 holds by construction: a term exists only via some document.
	// Terms appearing in every document get idf 0, which is correct (no
	// discriminative value), never an error.
	for term, postings := range ix.Postings {
		sort.Slice(postings, func(i, j int) bool { return postings[i].DocID < postings[j].DocID })
		ix.Postings[term] = postings
		ix.IDF[term] = math.Log(float64(ix.Docs) / float64(len(postings)))
	}

	return ix, dropped
}

func (b *Builder) tokenizeRecord(rec domain.CanonicalRecord) tokenizedDoc {
	parts := make([]string, 0, len(b.fields))
	for _, name := range b.fields {
		if fv, ok := rec.Fields[name]; ok && fv.Value != "" {
			parts = append(parts, fv.Value)
		}
	}

	tokens := b.tokenizer.Tokenize(strings.Join(parts, " | "))
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return tokenizedDoc{docID: rec.ID, counts: counts, length: len(tokens)}
}
