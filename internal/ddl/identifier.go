package ddl

import (
	"regexp"
	"strings"

	"relnorm/internal/domain"
)

// Placeholders returned by Sanitize when nothing usable is left.
const (
	BlankPlaceholder = "UNKNOWN_COLUMN"
	EmptyPlaceholder = "DEFAULT_COLUMN"
)

const (
	maxIdentifierLen = 128
	maxColumnTypeLen = 64
)

var (
	unsafeRune   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

	// A type name, optionally with precision or precision and scale:
	// INTEGER, VARCHAR(255), DECIMAL(18, 4), DOUBLE PRECISION.
	columnTypeRe = regexp.MustCompile(`(?i)^[A-Z][A-Z0-9_ ]*(?:\(\s*\d+\s*(?:,\s*\d+\s*)?\))?$`)
)

// Sanitize maps a source column or relation name to the uppercase
// identifier used in keys, references and rendered scripts. Runes outside
// [A-Za-z0-9_] become '_', edge underscores are stripped, and a leading
// digit gets a '_' guard. Blank input yields BlankPlaceholder; input with
// nothing left after stripping yields EmptyPlaceholder.
//
// The result always matches [A-Z_][A-Z0-9_]* and Sanitize is idempotent.
func Sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return BlankPlaceholder
	}
	s := strings.Trim(unsafeRune.ReplaceAllString(name, "_"), "_")
	switch {
	case s == "":
		return EmptyPlaceholder
	case s[0] >= '0' && s[0] <= '9':
		s = "_" + s
	}
	return strings.ToUpper(s)
}

// ValidateIdentifier rejects names that cannot be emitted unquoted.
func ValidateIdentifier(name string) error {
	switch {
	case name == "":
		return domain.ErrValidation("identifier is required")
	case len(name) > maxIdentifierLen:
		return domain.ErrValidation("identifier %.16q... exceeds %d characters", name, maxIdentifierLen)
	case !identifierRe.MatchString(name):
		return domain.ErrValidation("identifier %q must match [a-zA-Z_][a-zA-Z0-9_]*", name)
	}
	return nil
}

// ValidateColumnType rejects anything but a plain type name with optional
// precision and scale.
func ValidateColumnType(typeName string) error {
	switch {
	case typeName == "":
		return domain.ErrValidation("column type is required")
	case len(typeName) > maxColumnTypeLen:
		return domain.ErrValidation("column type exceeds %d characters", maxColumnTypeLen)
	case strings.ContainsAny(typeName, ";-'\"\\"):
		return domain.ErrValidation("column type %q contains invalid characters", typeName)
	case !columnTypeRe.MatchString(typeName):
		return domain.ErrValidation("column type %q is not a recognized type pattern", typeName)
	}
	return nil
}

// QuoteIdentifier double-quotes name, doubling embedded quotes. It does not
// validate.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral single-quotes value, doubling embedded quotes.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
