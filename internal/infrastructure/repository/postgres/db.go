package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema bootstraps all tables. The advisory lock serializes DDL across
// concurrently starting api/worker processes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS raw_records (
	id BIGSERIAL PRIMARY KEY,
	domain TEXT NOT NULL,
	source_name TEXT NOT NULL,
	source_url TEXT NOT NULL,
	retrieved_at TIMESTAMPTZ NOT NULL,
	mention_text TEXT NOT NULL DEFAULT '',
	entity_type TEXT NOT NULL DEFAULT '',
	logical_key TEXT NOT NULL,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	ingested_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_raw_records_domain ON raw_records(domain);

CREATE TABLE IF NOT EXISTS canonical_records (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	logical_key TEXT NOT NULL,
	entity_id TEXT NOT NULL DEFAULT '',
	entity_key TEXT NOT NULL,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	citations JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_canonical_records_domain ON canonical_records(domain);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	raw_records INT NOT NULL,
	merged INT NOT NULL,
	skipped INT NOT NULL,
	unresolved INT NOT NULL,
	docs_indexed INT NOT NULL,
	docs_dropped INT NOT NULL,
	terms INT NOT NULL,
	diagnostics JSONB NOT NULL DEFAULT '[]'::jsonb,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_domain ON pipeline_runs(domain, started_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
