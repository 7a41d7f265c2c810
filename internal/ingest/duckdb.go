package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/shopspring/decimal"

	"relnorm/internal/ddl"
	"relnorm/internal/domain"
)

// DuckDBReader reads files through DuckDB's table functions. CSV and XLSX
// are read as raw text with the first row as header, so header rules match
// CSVReader. Parquet and JSON carry their own column names and types;
// integers, floats and booleans arrive pre-typed.
type DuckDBReader struct {
	DB *sql.DB
}

// ReadFile reads path in the given format (csv, tsv, xlsx, parquet, json).
func (d DuckDBReader) ReadFile(ctx context.Context, path, format string) (domain.Relation, error) {
	format = strings.ToLower(format)
	if format == "xlsx" {
		stmt, err := ddl.LoadExtension("excel")
		if err != nil {
			return nil, err
		}
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("load excel extension: %w", err)
		}
	}

	query, err := ddl.SelectFromFile(path, format)
	if err != nil {
		return nil, err
	}
	rows, err := d.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", format, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	headerInData := format == "csv" || format == "tsv" || format == "xlsx"
	var names []string
	if !headerInData {
		names = Headers(cols)
	}

	rel := domain.Relation{}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if names == nil {
			header := make([]string, len(raw))
			for i, v := range raw {
				if v != nil {
					header[i] = fmt.Sprint(v)
				}
			}
			names = Headers(header)
			continue
		}

		cells := make([]domain.Cell, len(names))
		blank := true
		for i, n := range names {
			v := convert(raw[i])
			if !v.IsNull() {
				blank = false
			}
			cells[i] = domain.Cell{Name: n, Value: v}
		}
		if !blank {
			rel = append(rel, domain.NewRow(cells...))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if names == nil {
		return nil, fmt.Errorf("no header row found")
	}
	return rel, nil
}

// convert maps a scanned DuckDB value to a Value. Text is trimmed and blank
// text is null; decimals become reals.
func convert(v any) domain.Value {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return domain.Text(s)
		}
		return domain.Null()
	case duckdb.Decimal:
		if x.Value == nil {
			return domain.Null()
		}
		return domain.Real(decimal.NewFromBigInt(x.Value, -int32(x.Scale)).InexactFloat64())
	default:
		return domain.FromAny(v)
	}
}
