// Package ddl builds portable SQL statements for normalized relations and
// the DuckDB file readers that feed them.
package ddl

import (
	"fmt"
	"strings"

	"relnorm/internal/domain"
)

// ColumnDef describes a column for CREATE TABLE.
type ColumnDef struct {
	Name    string
	Type    string
	NotNull bool
}

// ForeignKeyDef is a FOREIGN KEY constraint. Reference has the form TABLE(COLUMN).
type ForeignKeyDef struct {
	Column    string
	Reference string
}

// TableDef is everything CreateTable needs.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	PrimaryKey  []string
	ForeignKeys []ForeignKeyDef
}

// reserved holds the keywords that cannot appear bare as a column or table
// name in SQLite or DuckDB. Sanitized names that collide get quoted.
var reserved = map[string]bool{
	"ALL": true, "ALTER": true, "AND": true, "AS": true, "ASC": true,
	"BETWEEN": true, "BY": true, "CASE": true, "CAST": true, "CHECK": true,
	"COLUMN": true, "CONSTRAINT": true, "CREATE": true, "CROSS": true,
	"DEFAULT": true, "DELETE": true, "DESC": true, "DISTINCT": true, "DROP": true,
	"ELSE": true, "END": true, "EXCEPT": true, "EXISTS": true, "FALSE": true,
	"FOR": true, "FOREIGN": true, "FROM": true, "FULL": true, "GROUP": true,
	"HAVING": true, "IN": true, "INDEX": true, "INNER": true, "INSERT": true,
	"INTERSECT": true, "INTO": true, "IS": true, "JOIN": true, "KEY": true,
	"LEFT": true, "LIKE": true, "LIMIT": true, "NOT": true, "NULL": true,
	"OFFSET": true, "ON": true, "OR": true, "ORDER": true, "OUTER": true,
	"PRIMARY": true, "REFERENCES": true, "RIGHT": true, "SELECT": true,
	"SET": true, "TABLE": true, "THEN": true, "TO": true, "TRUE": true,
	"UNION": true, "UNIQUE": true, "UPDATE": true, "USING": true,
	"VALUES": true, "WHEN": true, "WHERE": true, "WITH": true,
}

// Ident renders a validated identifier bare, quoting only reserved words.
func Ident(name string) string {
	if reserved[strings.ToUpper(name)] {
		return QuoteIdentifier(name)
	}
	return name
}

// CreateTable returns a multi-line CREATE TABLE statement:
//
//	CREATE TABLE T (
//	    COL TYPE [NOT NULL],
//	    CONSTRAINT PK_T PRIMARY KEY (A, B),
//	    CONSTRAINT FK_T_C FOREIGN KEY (C) REFERENCES X(Y)
//	);
func CreateTable(def TableDef) (string, error) {
	if err := ValidateIdentifier(def.Name); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(def.Columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}

	var lines []string
	for _, c := range def.Columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		line := "    " + Ident(c.Name) + " " + c.Type
		if c.NotNull {
			line += " NOT NULL"
		}
		lines = append(lines, line)
	}

	if len(def.PrimaryKey) > 0 {
		cols, err := identList(def.PrimaryKey)
		if err != nil {
			return "", fmt.Errorf("invalid primary key: %w", err)
		}
		lines = append(lines, fmt.Sprintf("    CONSTRAINT PK_%s PRIMARY KEY (%s)", def.Name, cols))
	}

	for _, fk := range def.ForeignKeys {
		if err := ValidateIdentifier(fk.Column); err != nil {
			return "", fmt.Errorf("invalid foreign key column %q: %w", fk.Column, err)
		}
		refTable, refCol, err := domain.ParseReference(fk.Reference)
		if err != nil {
			return "", err
		}
		if err := ValidateIdentifier(refTable); err != nil {
			return "", fmt.Errorf("invalid referenced table %q: %w", refTable, err)
		}
		if err := ValidateIdentifier(refCol); err != nil {
			return "", fmt.Errorf("invalid referenced column %q: %w", refCol, err)
		}
		lines = append(lines, fmt.Sprintf("    CONSTRAINT FK_%s_%s FOREIGN KEY (%s) REFERENCES %s(%s)",
			def.Name, fk.Column, Ident(fk.Column), Ident(refTable), Ident(refCol)))
	}

	return "CREATE TABLE " + Ident(def.Name) + " (\n" + strings.Join(lines, ",\n") + "\n);", nil
}

// InsertRow returns INSERT INTO T (A, B)\nVALUES (x, y); for pre-rendered literals.
func InsertRow(table string, columns, literals []string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	if len(columns) != len(literals) {
		return "", fmt.Errorf("got %d values for %d columns", len(literals), len(columns))
	}
	cols, err := identList(columns)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INSERT INTO %s (%s)\nVALUES (%s);", Ident(table), cols, strings.Join(literals, ", ")), nil
}

// DropTable returns DROP TABLE [IF EXISTS] T;.
func DropTable(table string, ifExists bool) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if ifExists {
		return "DROP TABLE IF EXISTS " + Ident(table) + ";", nil
	}
	return "DROP TABLE " + Ident(table) + ";", nil
}

// LoadExtension returns a DuckDB INSTALL/LOAD pair for extension.
func LoadExtension(extension string) (string, error) {
	if err := ValidateIdentifier(extension); err != nil {
		return "", fmt.Errorf("invalid extension name: %w", err)
	}
	return fmt.Sprintf("INSTALL %s; LOAD %s;", extension, extension), nil
}

// SelectFromFile generates a DuckDB query that reads every cell of a source
// file as text with an untouched header row, so header and null handling
// stay with the caller:
//
//	SELECT * FROM read_csv('/data/in.csv', header = false, all_varchar = true)
func SelectFromFile(sourcePath, fileFormat string) (string, error) {
	if sourcePath == "" {
		return "", fmt.Errorf("source path is required")
	}

	path := QuoteLiteral(sourcePath)
	switch strings.ToLower(fileFormat) {
	case "csv", "tsv":
		return fmt.Sprintf("SELECT * FROM read_csv(%s, header = false, all_varchar = true)", path), nil
	case "xlsx":
		return fmt.Sprintf("SELECT * FROM read_xlsx(%s, header = false, all_varchar = true)", path), nil
	case "parquet":
		return fmt.Sprintf("SELECT * FROM read_parquet(%s)", path), nil
	case "json", "ndjson":
		return fmt.Sprintf("SELECT * FROM read_json_auto(%s)", path), nil
	default:
		return "", fmt.Errorf("unsupported file format: %q", fileFormat)
	}
}

func identList(names []string) (string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		if err := ValidateIdentifier(n); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", n, err)
		}
		out[i] = Ident(n)
	}
	return strings.Join(out, ", "), nil
}
