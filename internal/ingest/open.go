package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"relnorm/internal/db"
	"relnorm/internal/domain"
)

// Options selects how Open reads a file.
type Options struct {
	// Delimiter overrides the .csv field separator; zero means ','. A .tsv
	// file is always tab separated.
	Delimiter rune
	// UseDuckDB routes .csv and .tsv through DuckDB instead of encoding/csv.
	UseDuckDB bool
	// DB is the DuckDB handle used for DuckDB-backed formats. When nil, Open
	// starts an in-memory database for the duration of the call.
	DB *sql.DB
}

// Formats lists the file extensions Open understands.
var Formats = []string{"csv", "tsv", "xlsx", "parquet", "json", "ndjson"}

// Format returns the reader format for path, derived from its extension.
func Format(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats {
		if ext == f {
			return f, nil
		}
	}
	return "", domain.ErrValidation("unsupported file type %q (want one of %s)", filepath.Ext(path), strings.Join(Formats, ", "))
}

// Open reads the file at path into a relation. Every read failure is
// returned as a *SourceError.
func Open(ctx context.Context, path string, opts Options) (domain.Relation, error) {
	rel, err := open(ctx, path, opts)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	return rel, nil
}

func open(ctx context.Context, path string, opts Options) (domain.Relation, error) {
	format, err := Format(path)
	if err != nil {
		return nil, err
	}

	if (format == "csv" || format == "tsv") && !opts.UseDuckDB {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close() //nolint:errcheck

		comma := opts.Delimiter
		if format == "tsv" {
			comma = '\t'
		}
		return CSVReader{Comma: comma}.Read(ctx, f)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	conn := opts.DB
	if conn == nil {
		conn, err = db.OpenDuckDB("")
		if err != nil {
			return nil, err
		}
		defer conn.Close() //nolint:errcheck
	}
	rel, err := DuckDBReader{DB: conn}.ReadFile(ctx, path, format)
	if err != nil {
		return nil, fmt.Errorf("duckdb %s reader: %w", format, err)
	}
	return rel, nil
}
