package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/index"
	"github.com/pogodigest/pogodigest/internal/core/ports"
)

// SearchUseCase answers ranked queries against the per-domain index
// snapshots the worker publishes. Snapshots are cached in memory and
// re-loaded when the stored snapshot is newer; queries against a loaded
// index are lock-free reads.
type SearchUseCase struct {
	snapshots ports.IndexSnapshotStore
	engine    *index.QueryEngine

	mu    sync.RWMutex
	cache map[domain.Domain]cachedIndex
}

type cachedIndex struct {
	ix       *index.InvertedIndex
	loadedAt time.Time
}

func NewSearchUseCase(snapshots ports.IndexSnapshotStore, engine *index.QueryEngine) *SearchUseCase {
	return &SearchUseCase{
		snapshots: snapshots,
		engine:    engine,
		cache:     make(map[domain.Domain]cachedIndex),
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, query string, d domain.Domain, limit int) (*domain.SearchResult, error) {
	if d == "" {
		d = index.RouteDomain(query)
	}
	if !d.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "search",
			fmt.Errorf("unknown domain %q", d))
	}

	ix, err := uc.domainIndex(ctx, d)
	if err != nil {
		return nil, err
	}

	results, err := uc.engine.Search(ix, query, limit)
	if err != nil {
		return nil, err
	}
	return &domain.SearchResult{Domain: d, Results: results}, nil
}

func (uc *SearchUseCase) domainIndex(ctx context.Context, d domain.Domain) (*index.InvertedIndex, error) {
	modTime, err := uc.snapshots.ModTime(ctx, d)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexNotFound, "stat index snapshot", err)
	}

	uc.mu.RLock()
	cached, ok := uc.cache[d]
	uc.mu.RUnlock()
	if ok && !modTime.After(cached.loadedAt) {
		return cached.ix, nil
	}

	ix, err := uc.snapshots.Load(ctx, d)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexNotFound, "load index snapshot", err)
	}
	if ix.Domain != d {
		return nil, domain.WrapError(domain.ErrIndexNotFound, "load index snapshot",
			errors.New("snapshot domain mismatch"))
	}

	uc.mu.Lock()
	uc.cache[d] = cachedIndex{ix: ix, loadedAt: modTime}
	uc.mu.Unlock()
	return ix, nil
}
