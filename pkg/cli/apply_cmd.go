package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"relnorm/internal/db"
	"relnorm/internal/ddl"
	"relnorm/internal/service/normalization"
	"relnorm/internal/sqlgen"
)

// applyResult reports one materialization.
type applyResult struct {
	File      string           `json:"file"`
	Target    string           `json:"target"`
	Path      string           `json:"path"`
	RunID     string           `json:"runId"`
	Outcome   string           `json:"outcome"`
	Migration string           `json:"migration,omitempty"`
	Rows      map[string]int64 `json:"rows"`
	Warnings  []string         `json:"warnings,omitempty"`
}

func newApplyCmd(s *settings) *cobra.Command {
	var (
		flags      runFlags
		sqlitePath string
		duckdbPath string
	)

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Normalize a file and create its tables in a database",
		Long: "Normalizes FILE and materializes the resulting relations. With --sqlite the SQL is " +
			"applied as a goose migration and the run is recorded in relnorm_runs; with --duckdb " +
			"the statements run in a single transaction.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (sqlitePath == "") == (duckdbPath == "") {
				return fmt.Errorf("exactly one of --sqlite or --duckdb is required")
			}
			ctx := cmd.Context()
			res, err := normalizeFile(ctx, s, &flags, args[0])
			if err != nil {
				return err
			}

			var out *applyResult
			if sqlitePath != "" {
				out, err = applySQLite(ctx, s, res, sqlitePath, flags.prefixOr(s), args[0])
			} else {
				out, err = applyDuckDB(ctx, res, duckdbPath)
			}
			if err != nil {
				return err
			}
			out.File = args[0]
			out.RunID = res.RunID
			out.Outcome = string(res.Outcome)
			for _, w := range res.Warnings {
				out.Warnings = append(out.Warnings, w.String())
			}
			s.logger.Info("applied", "target", out.Target, "path", out.Path, "tables", len(out.Rows))

			w := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return printJSON(w, out)
			}
			tables := make([]string, 0, len(out.Rows))
			for t := range out.Rows {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			rows := make([][]string, 0, len(tables))
			for _, t := range tables {
				rows = append(rows, []string{t, fmt.Sprint(out.Rows[t])})
			}
			_, _ = fmt.Fprintf(w, "%s -> %s %s (%s)\n", out.File, out.Target, out.Path, out.Outcome)
			printTable(w, []string{"table", "rows"}, rows)
			for _, warn := range out.Warnings {
				_, _ = fmt.Fprintf(w, "warning: %s\n", warn)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file to create tables in")
	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "DuckDB database file to create tables in")

	return cmd
}

func (f *runFlags) prefixOr(s *settings) string {
	if f.prefix != "" {
		return f.prefix
	}
	return s.cfg.TablePrefix
}

// applySQLite writes the rendered migration to a scratch directory and
// runs it through goose, then records the run.
func applySQLite(ctx context.Context, s *settings, res *normalization.Result, path, prefix, source string) (*applyResult, error) {
	migration, err := sqlgen.Migration(res.Relations)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "relnorm-migrations-")
	if err != nil {
		return nil, fmt.Errorf("create migration dir: %w", err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	now := time.Now().UTC()
	name := fmt.Sprintf("%s%03d_%s.sql", now.Format("20060102150405"), now.Nanosecond()/int(time.Millisecond), scriptName(source))
	if err := os.WriteFile(filepath.Join(dir, name), []byte(migration), 0o600); err != nil {
		return nil, fmt.Errorf("write migration: %w", err)
	}

	conn, err := db.OpenSQLite(ctx, path, db.ModeWrite, 0)
	if err != nil {
		return nil, err
	}
	defer conn.Close() //nolint:errcheck

	if err := db.RunMigrations(ctx, conn); err != nil {
		return nil, err
	}
	applied, err := db.ApplyMigrations(ctx, conn, os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	for _, m := range applied {
		s.logger.Debug("migration applied", "version", m.Version, "path", m.Path)
	}

	if err := db.RecordRun(ctx, conn, db.RunRecord{
		ID:        res.RunID,
		Source:    source,
		Prefix:    prefix,
		Outcome:   string(res.Outcome),
		Relations: len(res.Relations),
		Warnings:  len(res.Warnings),
	}); err != nil {
		return nil, err
	}

	counts, err := db.CountRows(ctx, conn, tableNames(res))
	if err != nil {
		return nil, err
	}
	return &applyResult{Target: "sqlite", Path: path, Migration: name, Rows: counts}, nil
}

func applyDuckDB(ctx context.Context, res *normalization.Result, path string) (*applyResult, error) {
	stmts, err := sqlgen.ScriptStatements(res.Relations)
	if err != nil {
		return nil, err
	}

	conn, err := db.OpenDuckDB(path)
	if err != nil {
		return nil, err
	}
	defer conn.Close() //nolint:errcheck

	if err := db.ExecStatements(ctx, conn, stmts); err != nil {
		return nil, fmt.Errorf("apply to duckdb: %w", err)
	}
	counts, err := db.CountRows(ctx, conn, tableNames(res))
	if err != nil {
		return nil, err
	}
	return &applyResult{Target: "duckdb", Path: path, Rows: counts}, nil
}

// tableNames lists the tables that received a CREATE statement.
func tableNames(res *normalization.Result) []string {
	var out []string
	for _, r := range res.Relations {
		if len(r.Data) > 0 {
			out = append(out, ddl.Sanitize(r.Name))
		}
	}
	return out
}
