package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/index"
	"github.com/pogodigest/pogodigest/internal/core/merge"
	"github.com/pogodigest/pogodigest/internal/core/ports"
)

type configSourceFake struct {
	cfg *ports.PipelineConfig
	err error
}

func (f *configSourceFake) Load(context.Context) (*ports.PipelineConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

type canonicalStoreFake struct {
	replaced map[domain.Domain][]domain.CanonicalRecord
	err      error
}

func (f *canonicalStoreFake) ReplaceDomain(_ context.Context, d domain.Domain, records []domain.CanonicalRecord) error {
	if f.err != nil {
		return f.err
	}
	if f.replaced == nil {
		f.replaced = make(map[domain.Domain][]domain.CanonicalRecord)
	}
	f.replaced[d] = records
	return nil
}

func (f *canonicalStoreFake) GetByID(_ context.Context, id string) (*domain.CanonicalRecord, error) {
	for _, records := range f.replaced {
		for i := range records {
			if records[i].ID == id {
				return &records[i], nil
			}
		}
	}
	return nil, domain.WrapError(domain.ErrRecordNotFound, "get canonical", errors.New(id))
}

type runStoreFake struct {
	reports []*domain.RunReport
	err     error
}

func (f *runStoreFake) SaveReport(_ context.Context, report *domain.RunReport) error {
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, report)
	return nil
}

type snapshotStoreFake struct {
	saved   map[domain.Domain]*index.InvertedIndex
	modTime map[domain.Domain]time.Time
	saveErr error
	loadErr error
}

func newSnapshotStoreFake() *snapshotStoreFake {
	return &snapshotStoreFake{
		saved:   make(map[domain.Domain]*index.InvertedIndex),
		modTime: make(map[domain.Domain]time.Time),
	}
}

func (f *snapshotStoreFake) Save(_ context.Context, ix *index.InvertedIndex) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[ix.Domain] = ix
	f.modTime[ix.Domain] = time.Now()
	return nil
}

func (f *snapshotStoreFake) Load(_ context.Context, d domain.Domain) (*index.InvertedIndex, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	ix, ok := f.saved[d]
	if !ok {
		return nil, errors.New("no snapshot")
	}
	return ix, nil
}

func (f *snapshotStoreFake) ModTime(_ context.Context, d domain.Domain) (time.Time, error) {
	mt, ok := f.modTime[d]
	if !ok {
		return time.Time{}, errors.New("no snapshot")
	}
	return mt, nil
}

func testPipelineConfig() *ports.PipelineConfig {
	return &ports.PipelineConfig{
		Aliases: []domain.Alias{
			{SurfaceForm: "Mega Venusaur", EntityID: "pokemon:venusaur-mega", EntityType: domain.EntityPokemon},
		},
		TrustRanks: merge.TrustRanks{
			domain.DomainEvents: {"official-blog", "leekduck"},
		},
		StopWords:  index.DefaultStopWords(),
		TextFields: []string{"title", "body"},
		MinTokens:  1,
	}
}

func TestRunDomainEndToEnd(t *testing.T) {
	raw := &rawStoreFake{byDom: map[domain.Domain][]domain.RawRecord{
		domain.DomainEvents: {
			rawEventRecord("community-day-2025-10"),
			{Domain: domain.DomainEvents, SourceName: "official-blog", SourceURL: "https://pokemongolive.com/cd", RetrievedAt: time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC), LogicalKey: "community-day-2025-10", Fields: map[string]string{"title": "Community Day: Mega Venusaur"}},
			{Domain: domain.DomainEvents, SourceName: "leekduck", SourceURL: "https://leekduck.com/bad", RetrievedAt: time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC), Fields: map[string]string{"title": "missing key"}},
		},
	}}
	canonical := &canonicalStoreFake{}
	runs := &runStoreFake{}
	snapshots := newSnapshotStoreFake()
	uc := NewPipelineUseCase(&configSourceFake{cfg: testPipelineConfig()}, raw, canonical, runs, snapshots)

	report, err := uc.RunDomain(context.Background(), domain.DomainEvents)
	if err != nil {
		t.Fatalf("RunDomain() error = %v", err)
	}
	if report.RawRecords != 3 || report.Merged != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.DocsIndexed != 1 {
		t.Fatalf("expected 1 indexed doc, got %d", report.DocsIndexed)
	}
	if len(canonical.replaced[domain.DomainEvents]) != 1 {
		t.Fatalf("expected canonical set replaced")
	}
	if _, ok := snapshots.saved[domain.DomainEvents]; !ok {
		t.Fatalf("expected index snapshot saved")
	}
	if len(runs.reports) != 1 {
		t.Fatalf("expected run report persisted")
	}
	if report.RunID == "" || report.FinishedAt.Before(report.StartedAt) {
		t.Fatalf("malformed report timing %+v", report)
	}
}

func TestRunDomainCountsUnresolved(t *testing.T) {
	raw := &rawStoreFake{byDom: map[domain.Domain][]domain.RawRecord{
		domain.DomainEvents: {
			{Domain: domain.DomainEvents, SourceName: "leekduck", SourceURL: "https://leekduck.com/u", RetrievedAt: time.Now().UTC(), MentionText: "shadow mewtwo", LogicalKey: "k1", Fields: map[string]string{"title": "unknown mon"}},
			{Domain: domain.DomainEvents, SourceName: "leekduck", SourceURL: "https://leekduck.com/r", RetrievedAt: time.Now().UTC(), MentionText: "mega venusaur", LogicalKey: "k2", Fields: map[string]string{"title": "known mon"}},
		},
	}}
	uc := NewPipelineUseCase(&configSourceFake{cfg: testPipelineConfig()}, raw, &canonicalStoreFake{}, &runStoreFake{}, newSnapshotStoreFake())

	report, err := uc.RunDomain(context.Background(), domain.DomainEvents)
	if err != nil {
		t.Fatalf("RunDomain() error = %v", err)
	}
	if report.Unresolved != 1 {
		t.Fatalf("expected 1 unresolved record, got %d", report.Unresolved)
	}
}

func TestRunDomainConfigLoadFailureIsFatal(t *testing.T) {
	raw := &rawStoreFake{}
	canonical := &canonicalStoreFake{}
	uc := NewPipelineUseCase(&configSourceFake{err: errors.New("unreadable alias table")}, raw, canonical, &runStoreFake{}, newSnapshotStoreFake())

	if _, err := uc.RunDomain(context.Background(), domain.DomainEvents); err == nil {
		t.Fatalf("expected error")
	}
	if len(canonical.replaced) != 0 {
		t.Fatalf("no merge output may be produced after a fatal config failure")
	}
}

func TestRunDomainAmbiguousDictionaryIsFatal(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.Aliases = append(cfg.Aliases, domain.Alias{
		SurfaceForm: "mega venusaur", EntityID: "pokemon:other", EntityType: domain.EntityPokemon,
	})
	uc := NewPipelineUseCase(&configSourceFake{cfg: cfg}, &rawStoreFake{}, &canonicalStoreFake{}, &runStoreFake{}, newSnapshotStoreFake())

	_, err := uc.RunDomain(context.Background(), domain.DomainEvents)
	if !domain.IsKind(err, domain.ErrAmbiguousAlias) {
		t.Fatalf("expected ErrAmbiguousAlias, got %v", err)
	}
}

func TestRunDomainRejectsUnknownDomain(t *testing.T) {
	uc := NewPipelineUseCase(&configSourceFake{cfg: testPipelineConfig()}, &rawStoreFake{}, &canonicalStoreFake{}, &runStoreFake{}, newSnapshotStoreFake())
	if _, err := uc.RunDomain(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown domain")
	}
}
