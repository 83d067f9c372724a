package triedict

// Hit is one reported occurrence: EndIndex is the index immediately after
// the last symbol of Pattern in the scanned text (end-exclusive semantics:
// the occurrence starts at EndIndex - len(Pattern)).
type Hit struct {
	EndIndex int
	Pattern  []Symbol
	Value    uint32
}

// BoundarySet constrains matches to occurrences whose neighboring symbols
// are either outside the text or themselves members of the set.
type BoundarySet struct {
	members map[Symbol]struct{}
}

// NewBoundarySet builds a BoundarySet from the given symbols.
func NewBoundarySet(symbols ...Symbol) *BoundarySet {
	b := &BoundarySet{members: make(map[Symbol]struct{}, len(symbols))}
	for _, s := range symbols {
		b.members[s] = struct{}{}
	}
	return b
}

func (b *BoundarySet) contains(s Symbol) bool {
	if b == nil {
		return false
	}
	_, ok := b.members[s]
	return ok
}

// Match scans text and returns an iterator over every occurrence of every
// stored pattern, reporting overlapping occurrences independently. Suffix
// links are rebuilt automatically if stale (see Dict.Prepare).
func (d *Dict) Match(text []Symbol) *MatchIter {
	return d.MatchBoundary(text, nil)
}

// MatchBoundary is Match with an optional boundary filter: a non-nil
// boundary retains a hit only if the symbols immediately before its start
// and after its end are either absent (start/end of text) or members of
// boundary.
func (d *Dict) MatchBoundary(text []Symbol, boundary *BoundarySet) *MatchIter {
	d.ensureLinks()
	return &MatchIter{
		d:        d,
		text:     text,
		boundary: boundary,
		cur:      0,
	}
}

// MatchIter is a pull-based iterator over match hits, avoiding the
// allocation of a full hit slice for long texts. Call Next until it
// returns false.
type MatchIter struct {
	d        *Dict
	text     []Symbol
	boundary *BoundarySet

	cur  NodeIndex
	pos  int // next text index to consume
	walk NodeIndex // node for the suffix-chain walk reporting hits at the current position; 0 means "no more hits at this position"
}

// Next advances the scan and returns the next hit, or (Hit{}, false) once
// the text is exhausted.
func (it *MatchIter) Next() (Hit, bool) {
	for {
		if it.walk != 0 {
			n := it.d.store.get(it.walk)
			r := it.walk
			it.walk = n.suffix
			if n.value == NoValue {
				continue
			}
			pattern := it.d.patternOf(r)
			end := it.pos // pos was already advanced past the symbol that produced this hit
			if hit, ok := it.makeHit(end, pattern, n.value); ok {
				return hit, true
			}
			continue
		}

		if it.pos >= len(it.text) {
			return Hit{}, false
		}

		sym := it.text[it.pos]
		it.pos++

		for it.cur != 0 && it.d.topo.findChild(it.cur, sym) == 0 {
			it.cur = it.d.store.get(it.cur).suffix
		}
		if next := it.d.topo.findChild(it.cur, sym); next != 0 {
			it.cur = next
		} else {
			it.cur = 0
		}
		it.walk = it.cur
	}
}

func (it *MatchIter) makeHit(end int, pattern []Symbol, value uint32) (Hit, bool) {
	if it.boundary != nil {
		start := end - len(pattern)
		if start > 0 && !it.boundary.contains(it.text[start-1]) {
			return Hit{}, false
		}
		if end < len(it.text) && !it.boundary.contains(it.text[end]) {
			return Hit{}, false
		}
	}
	return Hit{EndIndex: end, Pattern: pattern, Value: value}, true
}

// All drains the iterator into a slice. Prefer Next for long texts.
func (it *MatchIter) All() []Hit {
	var hits []Hit
	for {
		h, ok := it.Next()
		if !ok {
			return hits
		}
		hits = append(hits, h)
	}
}
