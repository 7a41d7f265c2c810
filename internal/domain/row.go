package domain

import (
	"encoding/json"
	"strings"
)

// Cell is one named value inside a Row. Derived is set on cells that a
// heuristic rule produced from another cell.
type Cell struct {
	Name    string
	Value   Value
	Derived bool
}

// Row is an ordered mapping from column name to Value. Names are unique
// within a row; order is kept for deterministic output.
type Row struct {
	cells []Cell
}

// NewRow builds a row from cells. A later cell with an already used name
// replaces the earlier one in place.
func NewRow(cells ...Cell) Row {
	var r Row
	for _, c := range cells {
		r = r.SetCell(c)
	}
	return r
}

// RowOf builds a row from alternating name/value pairs. Values go through
// FromAny. It panics on an odd argument count and is meant for tests and
// literals.
func RowOf(pairs ...any) Row {
	if len(pairs)%2 != 0 {
		panic("domain.RowOf: odd number of arguments")
	}
	cells := make([]Cell, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("domain.RowOf: column name must be a string")
		}
		cells = append(cells, Cell{Name: name, Value: FromAny(pairs[i+1])})
	}
	return NewRow(cells...)
}

// Len returns the number of cells.
func (r Row) Len() int { return len(r.cells) }

// Cells returns a copy of the row's cells in order.
func (r Row) Cells() []Cell {
	out := make([]Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// Names returns the column names in order.
func (r Row) Names() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.Name
	}
	return out
}

func (r Row) index(name string) int {
	for i, c := range r.cells {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the row carries the column.
func (r Row) Has(name string) bool { return r.index(name) >= 0 }

// Get returns the value of the column. A missing column reads as null.
func (r Row) Get(name string) Value {
	if i := r.index(name); i >= 0 {
		return r.cells[i].Value
	}
	return Null()
}

// Lookup returns the cell for name and whether it exists.
func (r Row) Lookup(name string) (Cell, bool) {
	if i := r.index(name); i >= 0 {
		return r.cells[i], true
	}
	return Cell{}, false
}

// Set returns a copy of the row with name set to v.
func (r Row) Set(name string, v Value) Row {
	return r.SetCell(Cell{Name: name, Value: v})
}

// SetCell returns a copy of the row with the cell replaced in place, or
// appended when the name is new.
func (r Row) SetCell(c Cell) Row {
	out := make([]Cell, len(r.cells), len(r.cells)+1)
	copy(out, r.cells)
	if i := r.index(c.Name); i >= 0 {
		out[i] = c
	} else {
		out = append(out, c)
	}
	return Row{cells: out}
}

// Without returns a copy of the row minus the named columns.
func (r Row) Without(names ...string) Row {
	out := make([]Cell, 0, len(r.cells))
	for _, c := range r.cells {
		drop := false
		for _, n := range names {
			if c.Name == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, c)
		}
	}
	return Row{cells: out}
}

// Project returns a row holding only the named columns, in the given order.
// Missing columns are filled with null.
func (r Row) Project(names ...string) Row {
	out := make([]Cell, 0, len(names))
	for _, n := range names {
		if c, ok := r.Lookup(n); ok {
			out = append(out, c)
		} else {
			out = append(out, Cell{Name: n, Value: Null()})
		}
	}
	return NewRow(out...)
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	return Row{cells: r.Cells()}
}

// Equal reports whether both rows hold the same names in the same order with
// equal values. The Derived marker is not compared.
func (r Row) Equal(o Row) bool {
	if len(r.cells) != len(o.cells) {
		return false
	}
	for i := range r.cells {
		if r.cells[i].Name != o.cells[i].Name || !r.cells[i].Value.Equal(o.cells[i].Value) {
			return false
		}
	}
	return true
}

// Key returns a collision-free encoding of the whole row content.
func (r Row) Key() string {
	var b strings.Builder
	for _, c := range r.cells {
		b.WriteString(Text(c.Name).Key())
		b.WriteByte('=')
		b.WriteString(c.Value.Key())
		b.WriteByte(';')
	}
	return b.String()
}

// String renders the row like {A=1, B=x}.
func (r Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r.cells {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		b.WriteByte('=')
		b.WriteString(c.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r.cells {
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		val, err := c.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(name)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
