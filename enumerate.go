package triedict

import "github.com/csengstock/triedict/internal/container"

// frame is one pending entry in the prefix iterator's explicit DFS stack:
// node is the next node to visit, and parentPath is the suffix symbols
// accumulated up to (but not including) node's own incoming-edge symbol.
type frame struct {
	node       NodeIndex
	parentPath []Symbol
}

// PrefixIter yields (Suffix, value) pairs below a prefix one at a time.
// It holds an explicit stack rather than recursing so traversal can be
// paused between Next calls without goroutines, matching the package's
// single-threaded, no-suspension concurrency model.
type PrefixIter struct {
	d       *Dict
	stack   *container.Stack[frame]
	pending []Suffix
	i       int
}

// newPrefixIter walks to the node reached by prefix and primes the iterator.
// If prefix is absent, the iterator yields nothing.
func (d *Dict) newPrefixIter(prefix []Symbol) *PrefixIter {
	it := &PrefixIter{d: d, stack: container.NewStack[frame]()}
	node, found := d.topo.walk(prefix)
	if !found {
		return it
	}
	p := d.store.get(node)
	if p.value != NoValue {
		it.pending = append(it.pending, Suffix{Symbols: nil, Value: p.value})
	}
	if p.child != 0 {
		it.stack.Push(frame{node: p.child, parentPath: nil})
	}
	return it
}

// Next returns the next (suffix, value) pair and true, or a zero Suffix and
// false once the subtree is exhausted.
func (it *PrefixIter) Next() (Suffix, bool) {
	for it.i < len(it.pending) {
		s := it.pending[it.i]
		it.i++
		return s, true
	}
	for it.stack.Len() > 0 {
		f, _ := it.stack.Pop()
		n := it.d.store.get(f.node)

		path := make([]Symbol, len(f.parentPath)+1)
		copy(path, f.parentPath)
		path[len(f.parentPath)] = n.symbol

		if n.sibling != 0 {
			it.stack.Push(frame{node: n.sibling, parentPath: f.parentPath})
		}
		if n.child != 0 {
			it.stack.Push(frame{node: n.child, parentPath: path})
		}
		if n.value != NoValue {
			return Suffix{Symbols: path, Value: n.value}, true
		}
	}
	return Suffix{}, false
}

// rebuildPatterns reconstructs the NodeIndex -> stored-pattern side table by
// walking the whole tree from root. Deserialize needs this because the wire
// format carries only the node array (per the spec's serializer contract)
// and node records have no parent pointer to climb after loading.
func rebuildPatterns(s *store) map[NodeIndex][]Symbol {
	patterns := make(map[NodeIndex][]Symbol)
	if len(s.nodes) == 0 {
		return patterns
	}
	stack := container.NewStack[frame]()
	root := s.get(0)
	if root.child != 0 {
		stack.Push(frame{node: root.child, parentPath: nil})
	}
	for stack.Len() > 0 {
		f, _ := stack.Pop()
		n := s.get(f.node)

		path := make([]Symbol, len(f.parentPath)+1)
		copy(path, f.parentPath)
		path[len(f.parentPath)] = n.symbol

		if n.sibling != 0 {
			stack.Push(frame{node: n.sibling, parentPath: f.parentPath})
		}
		if n.child != 0 {
			stack.Push(frame{node: n.child, parentPath: path})
		}
		if n.value != NoValue {
			patterns[f.node] = path
		}
	}
	return patterns
}
