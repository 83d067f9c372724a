package triedict

import "github.com/gammazero/deque"

// buildSuffixLinks performs the one-shot breadth-first pass that populates
// every node's failure link, per the spec's suffix-link algorithm. The
// teacher (itgcl/ahocorasick) drives the same BFS with a container/list
// queue; here a ring-buffer deque takes that role since the queue is filled
// and drained in a single uninterrupted pass with no need for a linked
// list's O(1) mid-sequence removal.
func buildSuffixLinks(s *store, t *topology) {
	s.setSuffix(0, 0)

	var q deque.Deque[NodeIndex]

	for c := s.get(0).child; c != 0; c = s.get(c).sibling {
		s.setSuffix(c, 0)
		q.PushBack(c)
	}

	for q.Len() > 0 {
		n := q.PopFront()
		for c := s.get(n).child; c != 0; c = s.get(c).sibling {
			sym := s.get(c).symbol

			f := s.get(n).suffix
			for f != 0 && t.findChild(f, sym) == 0 {
				f = s.get(f).suffix
			}

			target := t.findChild(f, sym)
			if target == 0 || target == c {
				s.setSuffix(c, 0)
			} else {
				s.setSuffix(c, target)
			}

			q.PushBack(c)
		}
	}
}
