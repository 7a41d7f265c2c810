package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DecomposedRelation is one relation produced by a normalization run,
// annotated with its keys. Key and relation names are sanitized SQL
// identifiers; ForeignKeys maps a local column to a reference of the form
// OTHER_RELATION(COLUMN).
type DecomposedRelation struct {
	Name        string            `json:"name"`
	Data        Relation          `json:"data"`
	PrimaryKeys []string          `json:"primaryKeys"`
	ForeignKeys map[string]string `json:"foreignKeys"`
}

// ForeignKey is one entry of DecomposedRelation.ForeignKeys.
type ForeignKey struct {
	Column    string
	Reference string
}

// SortedForeignKeys returns the foreign keys ordered by local column name.
func (d DecomposedRelation) SortedForeignKeys() []ForeignKey {
	out := make([]ForeignKey, 0, len(d.ForeignKeys))
	for col, ref := range d.ForeignKeys {
		out = append(out, ForeignKey{Column: col, Reference: ref})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// Reference formats a foreign key target.
func Reference(relation, column string) string {
	return relation + "(" + column + ")"
}

// ParseReference splits OTHER_RELATION(COLUMN) into its parts.
func ParseReference(ref string) (relation, column string, err error) {
	open := strings.IndexByte(ref, '(')
	if open <= 0 || !strings.HasSuffix(ref, ")") || open == len(ref)-2 {
		return "", "", ErrValidation("malformed foreign key reference %q", ref)
	}
	return ref[:open], ref[open+1 : len(ref)-1], nil
}

// String summarizes the relation for logs.
func (d DecomposedRelation) String() string {
	return fmt.Sprintf("%s(rows=%d pk=%v fk=%v)", d.Name, len(d.Data), d.PrimaryKeys, d.SortedForeignKeys())
}
