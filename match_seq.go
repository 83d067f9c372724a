//go:build go1.23

package triedict

import "iter"

// Seq adapts MatchIter to a Go 1.23 range-over-func iterator, for callers
// who prefer `for hit := range it.Seq() { ... }` over calling Next in a
// loop. Grounded on gaissmai/bart's dual iterator surface (classic Next-style
// plus an iter.Seq convenience wrapper over the same underlying walk).
func (it *MatchIter) Seq() iter.Seq[Hit] {
	return func(yield func(Hit) bool) {
		for {
			h, ok := it.Next()
			if !ok {
				return
			}
			if !yield(h) {
				return
			}
		}
	}
}
