// Package decompose removes one partial dependency from a first normal form
// relation, splitting it into a details relation and a main relation.
package decompose

import (
	"relnorm/internal/ddl"
	"relnorm/internal/domain"
)

// Suffixes of generated relation names, before sanitizing.
const (
	DetailsSuffix = "_Details"
	MainSuffix    = "_MainRelation"
)

// Decomposer names its output relations under Prefix.
type Decomposer struct {
	Prefix string
}

// Result is the outcome of one Decompose call. Relations lists the details
// relation before the main relation when Outcome is OutcomeDecomposed.
type Result struct {
	Outcome     domain.Outcome
	Relations   []domain.DecomposedRelation
	Determinant string
	Dependent   string
	Warnings    []domain.Warning
}

// MainName is the sanitized name of the main relation.
func (d Decomposer) MainName() string {
	return ddl.Sanitize(d.Prefix + MainSuffix)
}

// DetailsName is the sanitized name of the details relation for determinant.
func (d Decomposer) DetailsName(determinant string) string {
	return ddl.Sanitize(d.Prefix + "_" + determinant + DetailsSuffix)
}

// Decompose checks rel against key and extracts the first non-key column
// that depends on a single key attribute.
//
// The determinant is the key attribute that comes first in rel's heading,
// and only one dependent column is extracted per call. A key of at most one
// attribute, or no dependent column, leaves the relation unchanged.
//
// Before any of that, every column name of rel must sanitize to a distinct
// identifier. If two collide the result is OutcomeFallback with a
// consistency_fault warning and no keys, whatever the key size.
func (d Decomposer) Decompose(rel domain.Relation, key domain.AttributeSet) Result {
	heading := rel.Heading()
	keyCols := key.OrderedBy(heading)

	if w := checkNames(rel.Columns(), d.Prefix); w != nil {
		return Result{
			Outcome:   domain.OutcomeFallback,
			Relations: []domain.DecomposedRelation{d.Unkeyed(rel)},
			Warnings:  []domain.Warning{*w},
		}
	}

	if key.Len() <= 1 {
		return d.unchanged(rel, keyCols)
	}

	determinant := keyCols[0]
	dependent := ""
	for _, col := range heading {
		if key.Contains(col) {
			continue
		}
		if DependsOn(rel, determinant, col) {
			dependent = col
			break
		}
	}
	if dependent == "" {
		return d.unchanged(rel, keyCols)
	}

	detName := d.DetailsName(determinant)
	detKey := ddl.Sanitize(determinant)

	details := domain.DecomposedRelation{
		Name:        detName,
		Data:        rel.Project(determinant, dependent),
		PrimaryKeys: []string{detKey},
		ForeignKeys: map[string]string{},
	}
	main := domain.DecomposedRelation{
		Name:        d.MainName(),
		Data:        rel.Without(dependent),
		PrimaryKeys: sanitizeAll(keyCols),
		ForeignKeys: map[string]string{detKey: domain.Reference(detName, detKey)},
	}

	return Result{
		Outcome:     domain.OutcomeDecomposed,
		Relations:   []domain.DecomposedRelation{details, main},
		Determinant: determinant,
		Dependent:   dependent,
	}
}

// Unkeyed wraps rel as a single main relation with no keys.
func (d Decomposer) Unkeyed(rel domain.Relation) domain.DecomposedRelation {
	return domain.DecomposedRelation{
		Name:        d.MainName(),
		Data:        rel.Clone(),
		PrimaryKeys: []string{},
		ForeignKeys: map[string]string{},
	}
}

func (d Decomposer) unchanged(rel domain.Relation, keyCols []string) Result {
	return Result{
		Outcome: domain.OutcomeUnchanged,
		Relations: []domain.DecomposedRelation{{
			Name:        d.MainName(),
			Data:        rel.Clone(),
			PrimaryKeys: sanitizeAll(keyCols),
			ForeignKeys: map[string]string{},
		}},
	}
}

// DependsOn reports whether every pair of rows that agree on determinant
// also agree on dependent. Null is an ordinary value on both sides, so rows
// with a null determinant must agree with each other. A determinant that is
// null in every row is no evidence and the answer is false.
func DependsOn(rel domain.Relation, determinant, dependent string) bool {
	seen := make(map[string]string, len(rel))
	valued := false
	for _, row := range rel {
		det := row.Get(determinant)
		if !det.IsNull() {
			valued = true
		}
		dep := row.Get(dependent).Key()
		if prev, ok := seen[det.Key()]; ok {
			if prev != dep {
				return false
			}
			continue
		}
		seen[det.Key()] = dep
	}
	return valued
}

// checkNames verifies that sanitizing column names is one-to-one, so every
// emitted key names exactly one source column.
func checkNames(columns []string, prefix string) *domain.Warning {
	owner := make(map[string]string, len(columns))
	for _, c := range columns {
		s := ddl.Sanitize(c)
		if prev, ok := owner[s]; ok {
			w := domain.NewWarning(domain.WarnConsistencyFault,
				"columns %q and %q both map to identifier %s; relation %s emitted without keys",
				prev, c, s, ddl.Sanitize(prefix+MainSuffix))
			return &w
		}
		owner[s] = c
	}
	return nil
}

func sanitizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ddl.Sanitize(n)
	}
	return out
}
