package sqlgen

import (
	"fmt"
	"strings"

	"relnorm/internal/ddl"
	"relnorm/internal/domain"
)

// NoDataComment is rendered in place of a relation without rows.
const NoDataComment = "-- No data to generate SQL for."

// Column is one inferred column of a table.
type Column struct {
	Name string
	Type string
}

// Schema returns the union of sanitized column names over all rows, in
// first encounter order, each with the most specific type that holds every
// value. A column that is null everywhere is VARCHAR(255).
func Schema(rel domain.Relation) []Column {
	index := make(map[string]int)
	var cols []Column
	for _, row := range rel {
		for _, c := range row.Cells() {
			name := ddl.Sanitize(c.Name)
			t := InferType(c.Value)
			if i, ok := index[name]; ok {
				cols[i].Type = Promote(cols[i].Type, t)
				continue
			}
			index[name] = len(cols)
			cols = append(cols, Column{Name: name, Type: t})
		}
	}
	for i := range cols {
		if cols[i].Type == "" {
			cols[i].Type = TypeVarchar
		}
	}
	return cols
}

// Statements renders one relation as CREATE TABLE followed by one INSERT
// per row. Every INSERT lists the full schema; cells a row lacks are NULL.
// A relation without rows renders no statements.
func Statements(r domain.DecomposedRelation) ([]string, error) {
	if len(r.Data) == 0 {
		return nil, nil
	}
	table := ddl.Sanitize(r.Name)
	schema := Schema(r.Data)

	pk := make(map[string]bool, len(r.PrimaryKeys))
	for _, k := range r.PrimaryKeys {
		pk[k] = true
	}

	def := ddl.TableDef{Name: table, PrimaryKey: r.PrimaryKeys}
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
		def.Columns = append(def.Columns, ddl.ColumnDef{Name: c.Name, Type: c.Type, NotNull: pk[c.Name]})
	}
	for _, fk := range r.SortedForeignKeys() {
		def.ForeignKeys = append(def.ForeignKeys, ddl.ForeignKeyDef{Column: fk.Column, Reference: fk.Reference})
	}

	create, err := ddl.CreateTable(def)
	if err != nil {
		return nil, fmt.Errorf("relation %s: %w", table, err)
	}
	stmts := make([]string, 0, len(r.Data)+1)
	stmts = append(stmts, create)

	for _, row := range r.Data {
		byName := make(map[string]domain.Value, row.Len())
		for _, c := range row.Cells() {
			name := ddl.Sanitize(c.Name)
			if _, ok := byName[name]; !ok {
				byName[name] = c.Value
			}
		}
		literals := make([]string, len(schema))
		for i, c := range schema {
			v, ok := byName[c.Name]
			if !ok {
				v = domain.Null()
			}
			literals[i] = Literal(v, c.Type)
		}
		insert, err := ddl.InsertRow(table, names, literals)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", table, err)
		}
		stmts = append(stmts, insert)
	}
	return stmts, nil
}

// ScriptStatements renders every relation in order, details before main,
// so referenced tables exist before the tables that point at them.
func ScriptStatements(rels []domain.DecomposedRelation) ([]string, error) {
	var out []string
	for _, r := range rels {
		stmts, err := Statements(r)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

// Script renders rels as one SQL script.
func Script(rels []domain.DecomposedRelation) (string, error) {
	var b strings.Builder
	rendered := false
	for _, r := range rels {
		stmts, err := Statements(r)
		if err != nil {
			return "", err
		}
		if len(stmts) == 0 {
			continue
		}
		if rendered {
			b.WriteString("\n")
		}
		rendered = true
		b.WriteString(stmts[0])
		b.WriteString("\n\n")
		for _, s := range stmts[1:] {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	if !rendered {
		return NoDataComment + "\n", nil
	}
	return b.String(), nil
}

// Migration renders rels as a goose SQL migration. Every Up statement is
// fenced with StatementBegin/StatementEnd so text values containing
// semicolons survive goose's splitter; Down drops the tables in reverse
// order.
func Migration(rels []domain.DecomposedRelation) (string, error) {
	var up, down strings.Builder
	var tables []string
	for _, r := range rels {
		stmts, err := Statements(r)
		if err != nil {
			return "", err
		}
		if len(stmts) == 0 {
			continue
		}
		tables = append(tables, ddl.Sanitize(r.Name))
		for _, s := range stmts {
			up.WriteString("-- +goose StatementBegin\n")
			up.WriteString(s)
			up.WriteString("\n-- +goose StatementEnd\n")
		}
	}

	for i := len(tables) - 1; i >= 0; i-- {
		stmt, err := ddl.DropTable(tables[i], true)
		if err != nil {
			return "", err
		}
		down.WriteString(stmt)
		down.WriteString("\n")
	}

	var b strings.Builder
	b.WriteString("-- +goose Up\n")
	if len(tables) == 0 {
		b.WriteString(NoDataComment + "\n")
	}
	b.WriteString(up.String())
	b.WriteString("\n-- +goose Down\n")
	b.WriteString(down.String())
	return b.String(), nil
}
