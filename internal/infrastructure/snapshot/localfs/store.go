// Package localfs persists built inverted indexes as one JSON snapshot
// file per domain. Writes go through a temp file and rename so readers
// never observe a partially written snapshot.
package localfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/index"
)

type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./data/snapshots"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) path(d domain.Domain) string {
	return filepath.Join(s.basePath, string(d)+".json")
}

func (s *Store) Save(_ context.Context, ix *index.InvertedIndex) error {
	if ix == nil {
		return fmt.Errorf("save snapshot: index is nil")
	}
	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	final := s.path(ix.Domain)
	tmp, err := os.CreateTemp(s.basePath, string(ix.Domain)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (s *Store) Load(_ context.Context, d domain.Domain) (*index.InvertedIndex, error) {
	data, err := os.ReadFile(s.path(d))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrIndexNotFound, "load snapshot", err)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var ix index.InvertedIndex
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &ix, nil
}

func (s *Store) ModTime(_ context.Context, d domain.Domain) (time.Time, error) {
	info, err := os.Stat(s.path(d))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, domain.WrapError(domain.ErrIndexNotFound, "stat snapshot", err)
		}
		return time.Time{}, fmt.Errorf("stat snapshot: %w", err)
	}
	return info.ModTime(), nil
}
