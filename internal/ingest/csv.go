package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"relnorm/internal/domain"
)

// CSVReader reads delimited text with a header row. Every cell is text;
// blank cells become null and short records are padded with null.
type CSVReader struct {
	Comma rune
}

// Read parses r. An input with only a header yields an empty relation; an
// input without even a header is an error.
func (c CSVReader) Read(ctx context.Context, r io.Reader) (domain.Relation, error) {
	cr := csv.NewReader(r)
	if c.Comma != 0 {
		cr.Comma = c.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row found")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	names := Headers(header)

	rel := domain.Relation{}
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", line, err)
		}
		if row, ok := textRow(names, record); ok {
			rel = append(rel, row)
		}
	}
	return rel, nil
}

// textRow builds a row of trimmed text cells. Extra fields beyond the
// header are dropped. It returns false when every cell is blank.
func textRow(names, fields []string) (domain.Row, bool) {
	cells := make([]domain.Cell, len(names))
	blank := true
	for i, n := range names {
		v := domain.Null()
		if i < len(fields) {
			if s := strings.TrimSpace(fields[i]); s != "" {
				v = domain.Text(s)
				blank = false
			}
		}
		cells[i] = domain.Cell{Name: n, Value: v}
	}
	return domain.NewRow(cells...), !blank
}
