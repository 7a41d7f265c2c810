package domain

import (
	"encoding/json"
	"strings"
)

// AttributeSet is a duplicate-free set of column names that remembers
// insertion order. Order is never significant for equality, but it makes
// "first attribute" decisions deterministic.
type AttributeSet struct {
	names []string
}

// NewAttributeSet builds a set, dropping repeated names.
func NewAttributeSet(names ...string) AttributeSet {
	var s AttributeSet
	for _, n := range names {
		if !s.Contains(n) {
			s.names = append(s.names, n)
		}
	}
	return s
}

// Len returns the number of attributes.
func (s AttributeSet) Len() int { return len(s.names) }

// Names returns the attributes in insertion order.
func (s AttributeSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Contains reports membership.
func (s AttributeSet) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// ContainsAll reports whether o is a subset of s.
func (s AttributeSet) ContainsAll(o AttributeSet) bool {
	for _, n := range o.names {
		if !s.Contains(n) {
			return false
		}
	}
	return true
}

// IsSubsetOf reports whether s is a subset of o.
func (s AttributeSet) IsSubsetOf(o AttributeSet) bool { return o.ContainsAll(s) }

// Equal reports set equality, ignoring order.
func (s AttributeSet) Equal(o AttributeSet) bool {
	return s.Len() == o.Len() && s.ContainsAll(o)
}

// OrderedBy returns the attributes sorted by their position in heading.
// Attributes missing from heading keep their relative order at the end.
func (s AttributeSet) OrderedBy(heading []string) []string {
	out := make([]string, 0, len(s.names))
	for _, h := range heading {
		if s.Contains(h) {
			out = append(out, h)
		}
	}
	for _, n := range s.names {
		found := false
		for _, o := range out {
			if o == n {
				found = true
				break
			}
		}
		if !found {
			out = append(out, n)
		}
	}
	return out
}

// String renders the set like [A, B].
func (s AttributeSet) String() string {
	return "[" + strings.Join(s.names, ", ") + "]"
}

// MarshalJSON encodes the set as a JSON array of names.
func (s AttributeSet) MarshalJSON() ([]byte, error) {
	names := s.names
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}
