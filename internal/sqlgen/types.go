// Package sqlgen renders decomposed relations as portable SQL: CREATE TABLE
// statements with key constraints followed by one INSERT per row.
package sqlgen

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"relnorm/internal/ddl"
	"relnorm/internal/domain"
)

// Portable column types.
const (
	TypeVarchar   = "VARCHAR(255)"
	TypeInteger   = "INTEGER"
	TypeDecimal   = "DECIMAL(18, 4)"
	TypeBoolean   = "SMALLINT"
	TypeDate      = "DATE"
	TypeTimestamp = "TIMESTAMP"
)

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d+)?)?)?$`)
	decimalRe = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)
)

// InferType returns the column type a single value calls for. Null returns
// "" so it never influences a column's type.
func InferType(v domain.Value) string {
	switch v.Kind() {
	case domain.KindNull:
		return ""
	case domain.KindInteger:
		return TypeInteger
	case domain.KindReal:
		return TypeDecimal
	case domain.KindBoolean:
		return TypeBoolean
	}

	s, _ := v.AsText()
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return TypeVarchar
	case isBoolText(s):
		return TypeBoolean
	case isoDateRe.MatchString(s):
		if strings.Contains(s, "T") {
			return TypeTimestamp
		}
		return TypeDate
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TypeInteger
	}
	if decimalRe.MatchString(s) {
		return TypeDecimal
	}
	return TypeVarchar
}

// Promote returns the most specific type that holds values of both a and
// b. "" is the neutral element. VARCHAR absorbs everything; DECIMAL absorbs
// INTEGER and SMALLINT; INTEGER absorbs SMALLINT; TIMESTAMP absorbs DATE.
// Any other mix falls back to VARCHAR.
func Promote(a, b string) string {
	switch {
	case a == b:
		return a
	case a == "":
		return b
	case b == "":
		return a
	case a == TypeVarchar || b == TypeVarchar:
		return TypeVarchar
	}
	if rank(a) > 0 && rank(b) > 0 {
		if rank(a) > rank(b) {
			return a
		}
		return b
	}
	if (a == TypeTimestamp && b == TypeDate) || (a == TypeDate && b == TypeTimestamp) {
		return TypeTimestamp
	}
	return TypeVarchar
}

// rank orders the numeric types; 0 means not numeric.
func rank(t string) int {
	switch t {
	case TypeBoolean:
		return 1
	case TypeInteger:
		return 2
	case TypeDecimal:
		return 3
	}
	return 0
}

// Literal renders v for an INSERT into a column of type colType. Text is
// quoted with '' escaping, except true/false text headed for a numeric
// column, which becomes 1/0 like a boolean. Reals print their shortest
// exact decimal form; NaN and infinities have no SQL literal and become
// NULL.
func Literal(v domain.Value, colType string) string {
	switch v.Kind() {
	case domain.KindNull:
		return "NULL"
	case domain.KindBoolean:
		b, _ := v.AsBool()
		return boolLiteral(b)
	case domain.KindInteger:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10)
	case domain.KindReal:
		f, _ := v.AsReal()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "NULL"
		}
		return decimal.NewFromFloat(f).String()
	}

	s, _ := v.AsText()
	if rank(colType) > 0 && isBoolText(strings.TrimSpace(s)) {
		return boolLiteral(strings.EqualFold(strings.TrimSpace(s), "true"))
	}
	return ddl.QuoteLiteral(s)
}

func isBoolText(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func boolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
