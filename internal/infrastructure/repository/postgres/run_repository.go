package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) SaveReport(ctx context.Context, report *domain.RunReport) error {
	diagnosticsJSON, err := json.Marshal(report.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshal diagnostics: %w", err)
	}

	const query = `
INSERT INTO pipeline_runs (run_id, domain, raw_records, merged, skipped, unresolved, docs_indexed, docs_dropped, terms, diagnostics, started_at, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	if _, err := r.db.ExecContext(ctx, query,
		report.RunID,
		string(report.Domain),
		report.RawRecords,
		report.Merged,
		report.Skipped,
		report.Unresolved,
		report.DocsIndexed,
		report.DocsDropped,
		report.Terms,
		diagnosticsJSON,
		report.StartedAt,
		report.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert run report: %w", err)
	}
	return nil
}
