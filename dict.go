// Package triedict implements a compressed, serializable dictionary whose
// keys are sequences of symbols and whose values are small non-negative
// integers, backed by a fixed-width, index-addressed trie with Aho-Corasick
// failure links for multi-pattern matching.
//
// The dictionary is not safe for concurrent mutation. A read-only view may
// be shared across goroutines once suffix links are built (see Prepare) and
// no further Assign calls occur; Dict provides no internal locking.
package triedict

import (
	"github.com/pkg/errors"
)

// Error kinds surfaced by the core, per the package's error handling design:
// every error a caller can act on is one of these sentinels, reachable via
// errors.Is even though each return site wraps it with pkg/errors context.
var (
	ErrEmptyKey              = errors.New("triedict: pattern has zero symbols")
	ErrReservedSymbol        = errors.New("triedict: pattern contains reserved symbol 0")
	ErrValueOutOfRange       = errors.New("triedict: value exceeds maximum representable value")
	ErrCapacityExhausted     = errors.New("triedict: node store capacity exhausted")
	ErrStaleLinks            = errors.New("triedict: suffix links are stale")
	ErrCorruptSerializedData = errors.New("triedict: corrupt serialized data")
)

// Dict is the compressed trie dictionary. The zero value is not usable; use
// New.
type Dict struct {
	store *store
	topo  *topology

	// patterns records, for each terminal node, the symbol sequence that
	// ends there. Populated at Assign time so the matcher can report hits
	// without climbing ancestors -- the node record carries no parent
	// pointer (design note: option (b), side table over stack reconstruction).
	patterns map[NodeIndex][]Symbol

	linksStale   bool
	wantChecksum bool
}

// New creates an empty dictionary with a single root node.
func New(opts ...Option) *Dict {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := newStore(cfg.capacityHint)
	d := &Dict{
		store:        s,
		topo:         newTopology(s),
		patterns:     make(map[NodeIndex][]Symbol),
		linksStale:   true,
		wantChecksum: cfg.checksum,
	}
	return d
}

// Assign stores value under pattern, overwriting any prior value for that
// exact pattern (last write wins). Assigning marks suffix links stale; the
// next Match (or MatchBoundary) call rebuilds them automatically.
func (d *Dict) Assign(pattern []Symbol, value uint32) error {
	if len(pattern) == 0 {
		return errors.WithStack(ErrEmptyKey)
	}
	if value > MaxValue {
		return errors.Wrapf(ErrValueOutOfRange, "value %d exceeds max %d", value, MaxValue)
	}
	cur := NodeIndex(0)
	for i, sym := range pattern {
		if sym == 0 {
			return errors.Wrapf(ErrReservedSymbol, "symbol 0 at position %d", i)
		}
		next, err := d.topo.insertChild(cur, sym)
		if err != nil {
			return errors.Wrapf(err, "inserting symbol at position %d", i)
		}
		cur = next
	}
	d.store.setValue(cur, value)
	stored := make([]Symbol, len(pattern))
	copy(stored, pattern)
	d.patterns[cur] = stored
	d.linksStale = true
	return nil
}

// Lookup returns the value stored for pattern and true, or (0, false) if
// pattern was never assigned a value.
func (d *Dict) Lookup(pattern []Symbol) (uint32, bool) {
	node, found := d.topo.walk(pattern)
	if !found {
		return 0, false
	}
	n := d.store.get(node)
	if n.value == NoValue {
		return 0, false
	}
	return n.value, true
}

// Contains reports whether pattern has an assigned value. It is derived
// from Lookup.
func (d *Dict) Contains(pattern []Symbol) bool {
	_, ok := d.Lookup(pattern)
	return ok
}

// Len returns the number of distinct patterns currently holding a value.
func (d *Dict) Len() int {
	return d.store.terminalCount()
}

// Suffix is one result of PrefixEnumerate: a suffix symbol sequence and the
// value stored at prefix+Suffix.
type Suffix struct {
	Symbols []Symbol
	Value   uint32
}

// PrefixEnumerate walks to the node reached by prefix and depth-first
// traverses its subtree (child before sibling, over the topology's
// reverse-insertion-ordered sibling lists), returning every (suffix, value) pair
// such that prefix+suffix is a stored pattern. If prefix itself carries a
// value, it is included with an empty suffix. The traversal order is
// deterministic but not lexicographic; callers must treat the result as a
// set.
func (d *Dict) PrefixEnumerate(prefix []Symbol) []Suffix {
	var out []Suffix
	it := d.newPrefixIter(prefix)
	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, s)
	}
	return out
}

// Prepare rebuilds suffix (failure) links eagerly. Match and MatchBoundary call this
// automatically the first time they are invoked after a mutation, so most
// callers never need to call it directly; it exists for callers on a
// latency-sensitive path who want to pay the rebuild cost predictably
// instead of on the first match after an insertion burst.
func (d *Dict) Prepare() {
	if !d.linksStale {
		return
	}
	buildSuffixLinks(d.store, d.topo)
	d.linksStale = false
}

func (d *Dict) ensureLinks() {
	if d.linksStale {
		d.Prepare()
	}
}

func (d *Dict) patternOf(n NodeIndex) []Symbol {
	return d.patterns[n]
}
