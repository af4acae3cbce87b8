package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

type CanonicalRepository struct {
	db *sql.DB
}

func NewCanonicalRepository(db *sql.DB) *CanonicalRepository {
	return &CanonicalRepository{db: db}
}

// ReplaceDomain swaps the domain's canonical set in one transaction, so
// readers observe either the previous run's output or the new one, never a
// mixture.
func (r *CanonicalRepository) ReplaceDomain(ctx context.Context, d domain.Domain, records []domain.CanonicalRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM canonical_records WHERE domain = $1`, string(d)); err != nil {
		return fmt.Errorf("delete previous canonical set: %w", err)
	}

	const query = `
INSERT INTO canonical_records (id, domain, logical_key, entity_id, entity_key, fields, citations, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	now := time.Now().UTC()
	for _, rec := range records {
		fieldsJSON, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		citationsJSON, err := json.Marshal(rec.Citations)
		if err != nil {
			return fmt.Errorf("marshal citations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query,
			rec.ID,
			string(rec.Domain),
			rec.LogicalKey,
			rec.EntityID,
			rec.EntityKey,
			fieldsJSON,
			citationsJSON,
			now,
		); err != nil {
			return fmt.Errorf("insert canonical record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

func (r *CanonicalRepository) GetByID(ctx context.Context, id string) (*domain.CanonicalRecord, error) {
	const query = `
SELECT id, domain, logical_key, entity_id, entity_key, fields, citations
FROM canonical_records
WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var rec domain.CanonicalRecord
	var dom string
	var fieldsJSON, citationsJSON []byte
	err := row.Scan(&rec.ID, &dom, &rec.LogicalKey, &rec.EntityID, &rec.EntityKey, &fieldsJSON, &citationsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrRecordNotFound, "get canonical record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get canonical record: %w", err)
	}
	rec.Domain = domain.Domain(dom)
	if err := json.Unmarshal(fieldsJSON, &rec.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	if err := json.Unmarshal(citationsJSON, &rec.Citations); err != nil {
		return nil, fmt.Errorf("unmarshal citations: %w", err)
	}
	return &rec, nil
}
