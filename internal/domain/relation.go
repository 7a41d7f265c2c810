package domain

// Relation is an ordered sequence of rows. Rows usually share their column
// names but sparse rows are allowed; a missing column reads as null.
type Relation []Row

// Heading returns the column names of the first row. Key analysis treats it
// as the relation's attribute list.
func (r Relation) Heading() []string {
	if len(r) == 0 {
		return nil
	}
	return r[0].Names()
}

// Columns returns the union of column names over all rows in first
// encounter order.
func (r Relation) Columns() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range r {
		for _, n := range row.Names() {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// Card returns the number of rows.
func (r Relation) Card() int { return len(r) }

// Clone returns a deep copy of the relation.
func (r Relation) Clone() Relation {
	if r == nil {
		return nil
	}
	out := make(Relation, len(r))
	for i, row := range r {
		out[i] = row.Clone()
	}
	return out
}

// Project returns the relation restricted to names in the given order,
// with duplicate tuples removed. First occurrences win, so row order is
// stable.
func (r Relation) Project(names ...string) Relation {
	seen := make(map[string]struct{}, len(r))
	out := make(Relation, 0, len(r))
	for _, row := range r {
		p := row.Project(names...)
		k := p.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Without returns a copy of every row minus the named columns. Row count is
// unchanged.
func (r Relation) Without(names ...string) Relation {
	out := make(Relation, len(r))
	for i, row := range r {
		out[i] = row.Without(names...)
	}
	return out
}

// Equal reports row-by-row equality.
func (r Relation) Equal(o Relation) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
