// Package yamlfile loads the pipeline's external configuration inputs (the
// alias table, per-domain source trust ranking and index tuning) from a YAML
// file. The file is authored by integrators, not produced by the core.
package yamlfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/index"
	"github.com/pogodigest/pogodigest/internal/core/merge"
	"github.com/pogodigest/pogodigest/internal/core/ports"
)

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

type fileSchema struct {
	Aliases    []domain.Alias      `yaml:"aliases"`
	TrustRanks map[string][]string `yaml:"trust_ranks"`
	StopWords  []string            `yaml:"stop_words"`
	Index      struct {
		TextFields []string `yaml:"text_fields"`
		MinTokens  int      `yaml:"min_tokens"`
	} `yaml:"index"`
}

// Load reads and validates the configuration file. Any failure here is fatal
// for the run that requested it: a corrupt alias table would silently
// mis-resolve every record.
func (s *Source) Load(_ context.Context) (*ports.PipelineConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config %s: %w", s.path, err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse pipeline config %s: %w", s.path, err)
	}

	trust := make(merge.TrustRanks, len(schema.TrustRanks))
	for name, sources := range schema.TrustRanks {
		d := domain.Domain(name)
		if !d.Valid() {
			return nil, fmt.Errorf("parse pipeline config %s: unknown domain %q in trust_ranks", s.path, name)
		}
		trust[d] = sources
	}

	cfg := &ports.PipelineConfig{
		Aliases:    schema.Aliases,
		TrustRanks: trust,
		StopWords:  schema.StopWords,
		TextFields: schema.Index.TextFields,
		MinTokens:  schema.Index.MinTokens,
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *ports.PipelineConfig) {
	if len(cfg.StopWords) == 0 {
		cfg.StopWords = index.DefaultStopWords()
	}
	if len(cfg.TextFields) == 0 {
		cfg.TextFields = []string{"title", "category", "category_normalized", "summary", "body", "detail", "note"}
	}
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = 3
	}
}
