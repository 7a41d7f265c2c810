// Package keys finds the minimal candidate keys of a relation by exhaustive
// search over attribute subsets.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"relnorm/internal/domain"
)

// ErrTooManyAttributes is returned when the heading is wider than
// Synthesizer.MaxAttributes.
var ErrTooManyAttributes = errors.New("too many attributes for candidate key search")

// Synthesizer enumerates candidate keys. The search costs O(2^N * R) tuple
// comparisons for N attributes and R rows; MaxAttributes > 0 refuses
// headings wider than that instead of running.
type Synthesizer struct {
	MaxAttributes int
}

// CandidateKeys returns every minimal superkey of rel in discovery order:
// smaller keys first, equal sizes in lexicographic order of heading
// positions. The attribute list is the first row's heading; cells missing
// from later rows read as null. An empty relation has no keys.
func (s Synthesizer) CandidateKeys(rel domain.Relation) ([]domain.AttributeSet, error) {
	if len(rel) == 0 {
		return nil, nil
	}
	heading := rel.Heading()
	if s.MaxAttributes > 0 && len(heading) > s.MaxAttributes {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyAttributes, len(heading), s.MaxAttributes)
	}

	var found []domain.AttributeSet
	for k := 1; k <= len(heading); k++ {
		combinations(len(heading), k, func(idx []int) {
			names := make([]string, len(idx))
			for i, j := range idx {
				names[i] = heading[j]
			}
			set := domain.NewAttributeSet(names...)
			for _, key := range found {
				if set.ContainsAll(key) {
					return
				}
			}
			if IsSuperKey(rel, set) {
				found = append(found, set)
			}
		})
	}
	return found, nil
}

// IsSuperKey reports whether projecting rel onto set yields no duplicate
// tuples. Tuples are compared structurally; null equals null.
func IsSuperKey(rel domain.Relation, set domain.AttributeSet) bool {
	names := set.Names()
	seen := make(map[string]struct{}, len(rel))
	var b strings.Builder
	for _, row := range rel {
		b.Reset()
		for _, n := range names {
			b.WriteString(row.Get(n).Key())
			b.WriteByte(0)
		}
		k := b.String()
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// combinations calls fn with every k-subset of [0, n) as ascending indices,
// in lexicographic order. fn must not retain idx.
func combinations(n, k int, fn func(idx []int)) {
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
