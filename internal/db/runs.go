package db

import (
	"context"
	"database/sql"
	"fmt"

	"relnorm/internal/ddl"
)

// RunRecord is one row of relnorm_runs: a normalization run that was
// materialized into this database.
type RunRecord struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Prefix    string `json:"prefix"`
	Outcome   string `json:"outcome"`
	Relations int    `json:"relations"`
	Warnings  int    `json:"warnings"`
	AppliedAt string `json:"appliedAt"`
}

// RecordRun inserts rec into relnorm_runs.
func RecordRun(ctx context.Context, db *sql.DB, rec RunRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO relnorm_runs (id, source, prefix, outcome, relations, warnings) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.Prefix, rec.Outcome, rec.Relations, rec.Warnings)
	if err != nil {
		return fmt.Errorf("record run %s: %w", rec.ID, err)
	}
	return nil
}

// ListRuns returns recorded runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB) ([]RunRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, source, prefix, outcome, relations, warnings, applied_at FROM relnorm_runs ORDER BY applied_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Prefix, &r.Outcome, &r.Relations, &r.Warnings, &r.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRows returns the row count of each table.
func CountRows(ctx context.Context, db *sql.DB, tables []string) (map[string]int64, error) {
	out := make(map[string]int64, len(tables))
	for _, t := range tables {
		var n int64
		if err := db.QueryRowContext(ctx, "SELECT count(*) FROM "+ddl.QuoteIdentifier(t)).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}
