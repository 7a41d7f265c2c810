// Package heuristic holds the rules that split one non-atomic text cell into
// typed, atomic derived cells ("50.00 €" into an amount and a currency).
package heuristic

import (
	"regexp"
	"strings"

	"relnorm/internal/domain"
)

// Rule tries to replace a single cell with derived cells.
//
// Apply returns the derived cells, already marked Derived and named
// <column>_<Suffix>, or false to decline. Declining never has side effects;
// the caller moves on to the next rule or keeps the original value.
type Rule interface {
	Name() string
	Apply(column string, v domain.Value) ([]domain.Cell, bool)
}

// extractFunc turns a successful match into the two derived values.
// Returning false declines the cell (for example on a numeric parse failure).
type extractFunc func(m []string) (first, second domain.Value, ok bool)

// patternRule is a Rule backed by one anchored regular expression that
// yields exactly two derived columns.
type patternRule struct {
	name     string
	pattern  *regexp.Regexp
	suffixes [2]string
	extract  extractFunc
}

func (r *patternRule) Name() string { return r.name }

func (r *patternRule) Apply(column string, v domain.Value) ([]domain.Cell, bool) {
	s, ok := v.AsText()
	if !ok {
		return nil, false
	}
	if r.ownsColumn(column) {
		return nil, false
	}
	m := r.pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, false
	}
	first, second, ok := r.extract(m)
	if !ok {
		return nil, false
	}
	return []domain.Cell{
		{Name: column + "_" + r.suffixes[0], Value: first, Derived: true},
		{Name: column + "_" + r.suffixes[1], Value: second, Derived: true},
	}, true
}

// ownsColumn reports whether column already ends with one of the rule's own
// suffixes, so re-running the rule over its output is a no-op.
func (r *patternRule) ownsColumn(column string) bool {
	lower := strings.ToLower(column)
	for _, suf := range r.suffixes {
		if strings.HasSuffix(lower, "_"+strings.ToLower(suf)) {
			return true
		}
	}
	return false
}
