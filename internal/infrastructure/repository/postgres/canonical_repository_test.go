package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

func newCanonicalRepoWithMock(t *testing.T) (*CanonicalRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CanonicalRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsRecordNotFound(t *testing.T) {
	repo, mock, done := newCanonicalRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, domain, logical_key").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDUnmarshalsFieldsAndCitations(t *testing.T) {
	repo, mock, done := newCanonicalRepoWithMock(t)
	defer done()

	fields := `{"title":{"value":"Community Day: X","source_name":"official-blog","citations":[{"source_name":"official-blog","source_url":"https://pokemongolive.com/cd","retrieved_at":"2025-10-01T12:00:00Z"}]}}`
	citations := `[{"source_name":"official-blog","source_url":"https://pokemongolive.com/cd","retrieved_at":"2025-10-01T12:00:00Z"}]`

	mock.ExpectQuery("SELECT id, domain, logical_key").
		WithArgs("events:cd:~").
		WillReturnRows(sqlmock.NewRows([]string{"id", "domain", "logical_key", "entity_id", "entity_key", "fields", "citations"}).
			AddRow("events:cd:~", "events", "cd", "", "~", []byte(fields), []byte(citations)))

	rec, err := repo.GetByID(context.Background(), "events:cd:~")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if rec.Domain != domain.DomainEvents {
		t.Fatalf("unexpected domain %s", rec.Domain)
	}
	if rec.Fields["title"].Value != "Community Day: X" {
		t.Fatalf("unexpected fields %+v", rec.Fields)
	}
	if len(rec.Citations) != 1 || rec.Citations[0].SourceName != "official-blog" {
		t.Fatalf("unexpected citations %+v", rec.Citations)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceDomainDeletesThenInsertsInOneTx(t *testing.T) {
	repo, mock, done := newCanonicalRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM canonical_records").
		WithArgs("events").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO canonical_records").
		WithArgs("events:cd:~", "events", "cd", "", "~", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceDomain(context.Background(), domain.DomainEvents, []domain.CanonicalRecord{
		{
			ID:         "events:cd:~",
			Domain:     domain.DomainEvents,
			LogicalKey: "cd",
			EntityKey:  "~",
			Fields:     map[string]domain.FieldValue{},
			Citations: []domain.Citation{
				{SourceName: "leekduck", SourceURL: "https://leekduck.com/cd", RetrievedAt: time.Now().UTC()},
			},
		},
	})
	if err != nil {
		t.Fatalf("ReplaceDomain() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceDomainRollsBackOnInsertError(t *testing.T) {
	repo, mock, done := newCanonicalRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM canonical_records").
		WithArgs("events").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO canonical_records").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.ReplaceDomain(context.Background(), domain.DomainEvents, []domain.CanonicalRecord{
		{ID: "events:cd:~", Domain: domain.DomainEvents, LogicalKey: "cd", EntityKey: "~"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
