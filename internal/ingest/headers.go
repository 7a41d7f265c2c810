// Package ingest reads tabular source files into relations. Readers own the
// header contract: every column gets a non-empty, unique name.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// Headers turns a raw header row into unique column names. Names are
// trimmed; a blank name at position i (0-based) becomes Column<i+1>; a
// repeated name gets _1, _2, ... appended until it is unused.
func Headers(raw []string) []string {
	out := make([]string, 0, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Column" + strconv.Itoa(i+1)
		}
		base := name
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		out = append(out, name)
	}
	return out
}

// SourceError reports a failure to read an input file. It separates
// ingestion failures from normalization warnings.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string { return "read " + e.Path + ": " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }
