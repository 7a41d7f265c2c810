package db

import "embed"

// EmbedMigrations contains the bookkeeping migrations applied to every
// SQLite target before rendered schemas.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
