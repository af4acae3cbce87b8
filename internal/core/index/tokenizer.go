package index

import (
	"strings"
	"unicode"
)

// Tokenizer is the single tokenization used both at index build time and at
// query time. Build and query sharing one implementation is a hard invariant:
// any divergence silently corrupts relevance.
type Tokenizer struct {
	stop map[string]struct{}
}

// DefaultStopWords is the fallback stop-word set when the deployment supplies
// none in its index configuration file.
func DefaultStopWords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"in", "is", "it", "of", "on", "or", "the", "to", "with",
	}
}

func NewTokenizer(stopWords []string) *Tokenizer {
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Tokenizer{stop: stop}
}

// Tokenize lowercases, splits on non-alphanumeric boundaries and drops stop
// words. Pure and allocation-bounded; safe for concurrent use.
func (t *Tokenizer) Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		token := b.String()
		b.Reset()
		if _, stopped := t.stop[token]; !stopped {
			out = append(out, token)
		}
	}
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}
