package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

func newRawRepoWithMock(t *testing.T) (*RawRecordRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &RawRecordRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestSaveBatchNoopOnEmptyInput(t *testing.T) {
	repo, mock, done := newRawRepoWithMock(t)
	defer done()

	if err := repo.SaveBatch(context.Background(), nil); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveBatchInsertsAllRecordsInOneTx(t *testing.T) {
	repo, mock, done := newRawRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO raw_records").
		WithArgs("events", "leekduck", "https://leekduck.com/cd", sqlmock.AnyArg(), "", "", "cd", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO raw_records").
		WithArgs("wiki", "fandom", "https://wiki.example/p", sqlmock.AnyArg(), "mega venusaur", "pokemon", "p", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.SaveBatch(context.Background(), []domain.RawRecord{
		{Domain: domain.DomainEvents, SourceName: "leekduck", SourceURL: "https://leekduck.com/cd", RetrievedAt: time.Now().UTC(), LogicalKey: "cd", Fields: map[string]string{"title": "CD"}},
		{Domain: domain.DomainWiki, SourceName: "fandom", SourceURL: "https://wiki.example/p", RetrievedAt: time.Now().UTC(), MentionText: "mega venusaur", EntityType: domain.EntityPokemon, LogicalKey: "p", Fields: map[string]string{"body": "text"}},
	})
	if err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByDomainScansRecords(t *testing.T) {
	repo, mock, done := newRawRepoWithMock(t)
	defer done()

	retrieved := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT domain, source_name, source_url").
		WithArgs("events").
		WillReturnRows(sqlmock.NewRows([]string{"domain", "source_name", "source_url", "retrieved_at", "mention_text", "entity_type", "logical_key", "fields"}).
			AddRow("events", "leekduck", "https://leekduck.com/cd", retrieved, "", "", "cd", []byte(`{"title":"CD"}`)))

	records, err := repo.ListByDomain(context.Background(), domain.DomainEvents)
	if err != nil {
		t.Fatalf("ListByDomain() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Fields["title"] != "CD" {
		t.Fatalf("unexpected fields %+v", records[0].Fields)
	}
	if !records[0].RetrievedAt.Equal(retrieved) {
		t.Fatalf("unexpected retrievedAt %v", records[0].RetrievedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
