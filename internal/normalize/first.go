// Package normalize brings a raw relation into first normal form: every cell
// holds a single atomic value.
package normalize

import (
	"strings"

	"relnorm/internal/domain"
	"relnorm/internal/heuristic"
)

// DefaultDelimiter separates multiple values inside one cell.
const DefaultDelimiter = ","

// FirstNormalizer runs two passes over a relation. Row splitting expands
// multi-valued cells into the Cartesian product of their parts; column
// splitting then runs Rules over every text cell.
//
// A FirstNormalizer holds no state between calls and never mutates its
// input.
type FirstNormalizer struct {
	Rules     heuristic.Chain
	Delimiter string
}

// New returns a FirstNormalizer with the default rule chain and delimiter.
func New() *FirstNormalizer {
	return &FirstNormalizer{Rules: heuristic.Default(), Delimiter: DefaultDelimiter}
}

// ToFirstNormalForm returns a fresh relation in first normal form. Row order
// is preserved except where one source row expands into many.
func (n *FirstNormalizer) ToFirstNormalForm(rel domain.Relation) domain.Relation {
	if len(rel) == 0 {
		return domain.Relation{}
	}
	return n.SplitColumns(n.SplitRows(rel))
}

// SplitRows is the row-splitting pass on its own.
func (n *FirstNormalizer) SplitRows(rel domain.Relation) domain.Relation {
	out := make(domain.Relation, 0, len(rel))
	for _, row := range rel {
		out = append(out, n.expandRow(row)...)
	}
	return out
}

// SplitColumns is the column-splitting pass on its own. A rule match whose
// derived names would clash with another column of the row, or with cells
// derived earlier in it, is declined and the original cell kept.
func (n *FirstNormalizer) SplitColumns(rel domain.Relation) domain.Relation {
	out := make(domain.Relation, len(rel))
	for i, row := range rel {
		used := make(map[string]bool, row.Len())
		for _, name := range row.Names() {
			used[name] = true
		}
		cells := make([]domain.Cell, 0, row.Len())
		for _, c := range row.Cells() {
			if derived, ok := n.Rules.Apply(c); ok && !clashes(derived, used) {
				for _, d := range derived {
					used[d.Name] = true
				}
				cells = append(cells, derived...)
				continue
			}
			cells = append(cells, c)
		}
		out[i] = domain.NewRow(cells...)
	}
	return out
}

func clashes(derived []domain.Cell, used map[string]bool) bool {
	for _, d := range derived {
		if used[d.Name] {
			return true
		}
	}
	return false
}

// split holds the parts of one qualifying cell.
type split struct {
	index int
	parts []string
}

func (n *FirstNormalizer) expandRow(row domain.Row) []domain.Row {
	cells := row.Cells()

	var splits []split
	for i, c := range cells {
		if parts, ok := n.parts(c.Value); ok {
			splits = append(splits, split{index: i, parts: parts})
		}
	}
	if len(splits) == 0 {
		return []domain.Row{row.Clone()}
	}

	var out []domain.Row
	product(cells, splits, &out)
	return out
}

// product appends one row per combination of parts. splits[0] varies
// slowest; cells outside splits are identical in every generated row.
func product(cells []domain.Cell, splits []split, out *[]domain.Row) {
	if len(splits) == 0 {
		*out = append(*out, domain.NewRow(cells...))
		return
	}
	s := splits[0]
	for _, p := range s.parts {
		next := make([]domain.Cell, len(cells))
		copy(next, cells)
		next[s.index].Value = domain.Text(p)
		product(next, splits[1:], out)
	}
}

// parts reports the non-empty trimmed parts of a delimited text value. A
// value qualifies only when it contains the delimiter and at least one part
// is left after trimming.
func (n *FirstNormalizer) parts(v domain.Value) ([]string, bool) {
	s, ok := v.AsText()
	if !ok {
		return nil, false
	}
	delim := n.delimiter()
	s = strings.TrimSpace(s)
	if !strings.Contains(s, delim) {
		return nil, false
	}
	var parts []string
	for _, p := range strings.Split(s, delim) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts, len(parts) > 0
}

func (n *FirstNormalizer) delimiter() string {
	if n.Delimiter == "" {
		return DefaultDelimiter
	}
	return n.Delimiter
}
