package triedict

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// Symbol is one element of a pattern. Zero is reserved and never appears in
// a stored pattern; only the root node carries it.
type Symbol = uint32

// NodeIndex addresses a node in a Store. Index 0 is both the root and the
// null pointer: by construction the root is never referenced as a child,
// sibling, or suffix target of another node, so 0 unambiguously means
// "absent" everywhere outside root identity.
type NodeIndex = uint32

// NoValue is the sentinel stored in node.value meaning "no pattern ends
// here" -- the node is a branch-only internal node.
const NoValue uint32 = 1<<32 - 1

// MaxValue is the largest value an assignment may carry.
const MaxValue uint32 = NoValue - 1

// maxNodeIndex bounds allocation: the node count may never reach 2^32-1,
// since that value is reserved by the serializer as "count unknown/corrupt".
const maxNodeIndex = 1<<32 - 1

// node is the fixed-width record described by the data model: five u32
// fields, no parent pointer. Field order matches the wire format in
// serialize.go.
type node struct {
	symbol  uint32
	value   uint32
	child   NodeIndex
	sibling NodeIndex
	suffix  NodeIndex
}

// store is the growable, index-addressed node array. It owns node 0 (the
// root) from construction and never reuses an index once allocated.
//
// terminalBits mirrors "value != NoValue" per node, letting Dict.Len answer
// without walking the array; it is maintained alongside value writes rather
// than recomputed, the same trade the teacher makes with its output/index
// fields living directly on the node.
type store struct {
	nodes        []node
	terminalBits *bitset.BitSet
}

// newStore allocates a store with its root node already present at index 0,
// sized to capacityHint nodes where that is a useful upfront estimate (e.g.
// total symbols across patterns about to be inserted). A hint of 0 is fine;
// the backing slice still grows on demand.
func newStore(capacityHint int) *store {
	if capacityHint < 1 {
		capacityHint = 1
	}
	s := &store{
		nodes:        make([]node, 1, capacityHint),
		terminalBits: bitset.New(uint(capacityHint)),
	}
	s.nodes[0] = node{value: NoValue}
	return s
}

// allocate appends a fresh node carrying the given incoming-edge symbol and
// returns its index. New nodes start with value = NoValue and all links
// zeroed (absent).
func (s *store) allocate(symbol uint32) (NodeIndex, error) {
	if len(s.nodes)+1 >= maxNodeIndex {
		return 0, errors.Wrapf(ErrCapacityExhausted, "node store cannot grow to %d nodes", maxNodeIndex)
	}
	s.nodes = append(s.nodes, node{symbol: symbol, value: NoValue})
	return NodeIndex(len(s.nodes) - 1), nil
}

// get returns the node record at i. Callers must not retain the returned
// value across a subsequent allocate, since the backing array may move.
func (s *store) get(i NodeIndex) node {
	return s.nodes[i]
}

// len reports the number of allocated nodes, including the root.
func (s *store) len() int {
	return len(s.nodes)
}

// setValue overwrites the value carried at i and keeps terminalBits current.
func (s *store) setValue(i NodeIndex, v uint32) {
	s.nodes[i].value = v
	if v == NoValue {
		s.terminalBits.Clear(uint(i))
	} else {
		s.terminalBits.Set(uint(i))
	}
}

func (s *store) setChild(i, child NodeIndex)     { s.nodes[i].child = child }
func (s *store) setSibling(i, sibling NodeIndex) { s.nodes[i].sibling = sibling }
func (s *store) setSuffix(i, suffix NodeIndex)   { s.nodes[i].suffix = suffix }

// terminalCount returns the number of nodes whose value is not NoValue --
// the number of distinct patterns currently stored.
func (s *store) terminalCount() int {
	return int(s.terminalBits.Count())
}

// rebuildTerminalBits recomputes terminalBits from scratch. Used after
// Deserialize populates s.nodes directly, bypassing setValue.
func (s *store) rebuildTerminalBits() {
	s.terminalBits = bitset.New(uint(len(s.nodes)))
	for i, n := range s.nodes {
		if n.value != NoValue {
			s.terminalBits.Set(uint(i))
		}
	}
}
