package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

type RawRecordRepository struct {
	db *sql.DB
}

func NewRawRecordRepository(db *sql.DB) *RawRecordRepository {
	return &RawRecordRepository{db: db}
}

func (r *RawRecordRepository) SaveBatch(ctx context.Context, records []domain.RawRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin raw batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO raw_records (domain, source_name, source_url, retrieved_at, mention_text, entity_type, logical_key, fields)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	for _, rec := range records {
		fieldsJSON, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query,
			string(rec.Domain),
			rec.SourceName,
			rec.SourceURL,
			rec.RetrievedAt,
			rec.MentionText,
			string(rec.EntityType),
			rec.LogicalKey,
			fieldsJSON,
		); err != nil {
			return fmt.Errorf("insert raw record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit raw batch tx: %w", err)
	}
	return nil
}

func (r *RawRecordRepository) ListByDomain(ctx context.Context, d domain.Domain) ([]domain.RawRecord, error) {
	const query = `
SELECT domain, source_name, source_url, retrieved_at, mention_text, entity_type, logical_key, fields
FROM raw_records
WHERE domain = $1
ORDER BY retrieved_at, source_name, source_url, id`
	rows, err := r.db.QueryContext(ctx, query, string(d))
	if err != nil {
		return nil, fmt.Errorf("list raw records: %w", err)
	}
	defer rows.Close()

	var out []domain.RawRecord
	for rows.Next() {
		var rec domain.RawRecord
		var dom, entityType string
		var fieldsJSON []byte
		if err := rows.Scan(&dom, &rec.SourceName, &rec.SourceURL, &rec.RetrievedAt,
			&rec.MentionText, &entityType, &rec.LogicalKey, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan raw record: %w", err)
		}
		rec.Domain = domain.Domain(dom)
		rec.EntityType = domain.EntityType(entityType)
		if err := json.Unmarshal(fieldsJSON, &rec.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw records: %w", err)
	}
	return out, nil
}
