package heuristic

import (
	"strings"

	"relnorm/internal/domain"
)

// Chain is an ordered list of rules evaluated greedily: the first rule that
// accepts a cell wins, so the order is part of the observable behavior.
type Chain []Rule

// Default returns the full chain in precedence order. Currency and quantity
// run before the generalist value/unit rule because their patterns overlap.
func Default() Chain {
	return Chain{Currency(), QuantityItem(), ValueUnit(), ParentheticalAlias()}
}

// ByName returns the default rules whose names are listed, keeping the
// default precedence regardless of the order given. No names means Default.
func ByName(names ...string) (Chain, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		want[n] = true
	}

	out := Chain{}
	for _, r := range Default() {
		if want[r.Name()] {
			out = append(out, r)
			delete(want, r.Name())
		}
	}
	for n := range want {
		return nil, domain.ErrValidation("unknown heuristic %q (known: %s)", n, strings.Join(Default().Names(), ", "))
	}
	return out, nil
}

// Names lists the rule names in evaluation order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Name()
	}
	return out
}

// Apply runs the chain over one cell. Cells already produced by a rule and
// non-text values are declined without consulting any rule.
func (c Chain) Apply(cell domain.Cell) ([]domain.Cell, bool) {
	if cell.Derived || cell.Value.Kind() != domain.KindText {
		return nil, false
	}
	for _, r := range c {
		if derived, ok := r.Apply(cell.Name, cell.Value); ok {
			return derived, true
		}
	}
	return nil, false
}
