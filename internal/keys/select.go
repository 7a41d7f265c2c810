package keys

import "relnorm/internal/domain"

// Select picks the key the decomposer works on: the smallest composite key
// if there is one, otherwise the smallest simple key. Ties go to the key
// discovered first. It returns false when keys is empty.
func Select(keys []domain.AttributeSet) (domain.AttributeSet, bool) {
	var best domain.AttributeSet
	found := false
	for _, k := range keys {
		if k.Len() > 1 && (!found || k.Len() < best.Len()) {
			best, found = k, true
		}
	}
	if found {
		return best, true
	}
	for _, k := range keys {
		if k.Len() > 0 && (!found || k.Len() < best.Len()) {
			best, found = k, true
		}
	}
	return best, found
}
