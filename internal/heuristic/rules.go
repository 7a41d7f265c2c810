package heuristic

import (
	"regexp"
	"strconv"
	"strings"

	"relnorm/internal/domain"
)

// Rule names accepted by ByName.
const (
	NameCurrency           = "currency"
	NameQuantityItem       = "quantity_item"
	NameValueUnit          = "value_unit"
	NameParentheticalAlias = "parenthetical_alias"
)

var (
	// [prefix symbols] amount [suffix symbols]; at least one side must carry a symbol.
	currencyRe = regexp.MustCompile(`^([$€£¥₹₩¢]+)?\s*(-?\d+(\.\d+)?)\s*([$€£¥₹₩¢]+)?$`)

	quantityItemRe = regexp.MustCompile(`^(\d+)\s+(.*)$`)

	// Units are at most three runes of letters, '%', '°' or '.'.
	valueUnitRe = regexp.MustCompile(`^(-?\d+([.,]\d+)?)\s*([a-zA-Z%°.]{1,3})$`)

	parentheticalAliasRe = regexp.MustCompile(`^(.*?)\s*\((.*?)\)$`)
)

// Currency splits "50.00 €" or "$60" into <col>_Amount (real) and
// <col>_Currency (text). When symbols appear on both sides the prefix wins.
func Currency() Rule {
	return &patternRule{
		name:     NameCurrency,
		pattern:  currencyRe,
		suffixes: [2]string{"Amount", "Currency"},
		extract: func(m []string) (domain.Value, domain.Value, bool) {
			symbol := m[1]
			if symbol == "" {
				symbol = m[4]
			}
			if symbol == "" {
				return domain.Value{}, domain.Value{}, false
			}
			amount, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return domain.Value{}, domain.Value{}, false
			}
			return domain.Real(amount), domain.Text(symbol), true
		},
	}
}

// QuantityItem splits "5 Books" into <col>_Quantity (integer) and
// <col>_Item (text). Quantities that overflow int64 are declined.
func QuantityItem() Rule {
	return &patternRule{
		name:     NameQuantityItem,
		pattern:  quantityItemRe,
		suffixes: [2]string{"Quantity", "Item"},
		extract: func(m []string) (domain.Value, domain.Value, bool) {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return domain.Value{}, domain.Value{}, false
			}
			return domain.Int(n), domain.Text(strings.TrimSpace(m[2])), true
		},
	}
}

// ValueUnit splits "101,1 kg" or "20.5°C" into <col>_Value (real, comma
// read as the decimal separator) and <col>_Unit (text).
func ValueUnit() Rule {
	return &patternRule{
		name:     NameValueUnit,
		pattern:  valueUnitRe,
		suffixes: [2]string{"Value", "Unit"},
		extract: func(m []string) (domain.Value, domain.Value, bool) {
			f, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
			if err != nil {
				return domain.Value{}, domain.Value{}, false
			}
			return domain.Real(f), domain.Text(m[3]), true
		},
	}
}

// ParentheticalAlias splits "Google (Alphabet)" into <col>_Primary and
// <col>_Alias, both trimmed text.
func ParentheticalAlias() Rule {
	return &patternRule{
		name:     NameParentheticalAlias,
		pattern:  parentheticalAliasRe,
		suffixes: [2]string{"Primary", "Alias"},
		extract: func(m []string) (domain.Value, domain.Value, bool) {
			return domain.Text(strings.TrimSpace(m[1])), domain.Text(strings.TrimSpace(m[2])), true
		},
	}
}
