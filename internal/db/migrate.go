package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// SchemaVersionTable tracks rendered migrations, separate from goose's
// default table that records the bookkeeping migrations.
const SchemaVersionTable = "relnorm_schema_version"

// RunMigrations applies the embedded bookkeeping migrations to a SQLite
// target. goose records them in its default version table.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(EmbedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("bookkeeping migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// AppliedMigration is one rendered migration that ApplyMigrations ran.
type AppliedMigration struct {
	Version int64
	Path    string
}

// ApplyMigrations runs every pending goose migration found at the root of
// fsys, such as the files written by `relnorm normalize --migration`.
func ApplyMigrations(ctx context.Context, db *sql.DB, fsys fs.FS) ([]AppliedMigration, error) {
	store, err := database.NewStore(database.DialectSQLite3, SchemaVersionTable)
	if err != nil {
		return nil, fmt.Errorf("goose store: %w", err)
	}
	provider, err := goose.NewProvider("", db, fsys, goose.WithStore(store))
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}

	applied := make([]AppliedMigration, 0, len(results))
	for _, r := range results {
		applied = append(applied, AppliedMigration{Version: r.Source.Version, Path: r.Source.Path})
	}
	return applied, nil
}
