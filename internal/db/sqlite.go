// Package db opens the SQLite and DuckDB targets that normalized relations
// are materialized into, and runs the goose migrations against them.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Mode selects how a SQLite target is opened.
type Mode string

const (
	// ModeWrite opens a single-connection pool that takes the write lock
	// when a transaction begins. Rendered migrations are applied in this mode.
	ModeWrite Mode = "write"
	// ModeRead opens a pooled reader over an existing target.
	ModeRead Mode = "read"
)

const (
	defaultReadPool = 4
	pingTimeout     = 5 * time.Second
)

// sqlitePragmas are set on every connection. Foreign keys are on so the
// rendered FOREIGN KEY constraints are enforced while rows are inserted.
var sqlitePragmas = map[string]string{
	"_journal_mode": "WAL",
	"_busy_timeout": "5000",
	"_synchronous":  "NORMAL",
	"_foreign_keys": "on",
}

// OpenSQLite opens the SQLite target at path. In read mode the file must
// already exist and maxOpen bounds the pool (0 means 4); write mode always
// uses one connection.
func OpenSQLite(ctx context.Context, path string, mode Mode, maxOpen int) (*sql.DB, error) {
	poolSize, err := mode.poolSize(maxOpen)
	if err != nil {
		return nil, err
	}
	if mode == ModeRead {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("sqlite target %s does not exist", path)
		}
	}

	conn, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}
	conn.SetMaxOpenConns(poolSize)
	conn.SetMaxIdleConns(poolSize)
	conn.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}
	return conn, nil
}

func (m Mode) poolSize(maxOpen int) (int, error) {
	switch m {
	case ModeWrite:
		return 1, nil
	case ModeRead:
		if maxOpen <= 0 {
			return defaultReadPool, nil
		}
		return maxOpen, nil
	default:
		return 0, fmt.Errorf("invalid SQLite mode %q: must be %q or %q", string(m), ModeRead, ModeWrite)
	}
}

func buildDSN(path string, mode Mode) string {
	params := url.Values{}
	for k, v := range sqlitePragmas {
		params.Set(k, v)
	}
	if mode == ModeWrite {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
