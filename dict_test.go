package triedict

import (
	"reflect"
	"sort"
	"testing"
)

func sym(s string) []Symbol { return FromString(s) }

func TestAssignAndLookup(t *testing.T) {
	d := New()

	if err := d.Assign(sym("key1"), 0); err != nil {
		t.Fatalf("Assign(key1) = %v; want nil", err)
	}
	if err := d.Assign(sym("key2"), 1); err != nil {
		t.Fatalf("Assign(key2) = %v; want nil", err)
	}
	if err := d.Assign(sym("key2"), 11); err != nil {
		t.Fatalf("Assign(key2) overwrite = %v; want nil", err)
	}

	tests := []struct {
		pattern string
		want    uint32
		wantOK  bool
	}{
		{"key1", 0, true},
		{"key2", 11, true},
		{"key3", 0, false},
	}
	for _, tt := range tests {
		got, ok := d.Lookup(sym(tt.pattern))
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Lookup(%q) = (%d, %v); want (%d, %v)", tt.pattern, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAssignRejectsEmptyKey(t *testing.T) {
	d := New()
	if err := d.Assign(nil, 0); err == nil {
		t.Fatalf("Assign(nil) = nil; want EmptyKey error")
	}
}

func TestAssignRejectsReservedSymbol(t *testing.T) {
	d := New()
	if err := d.Assign([]Symbol{'a', 0, 'b'}, 0); err == nil {
		t.Fatalf("Assign with symbol 0 = nil; want ReservedSymbol error")
	}
}

func TestAssignRejectsValueOutOfRange(t *testing.T) {
	d := New()
	if err := d.Assign(sym("x"), NoValue); err == nil {
		t.Fatalf("Assign with value=NoValue = nil; want ValueOutOfRange error")
	}
	if err := d.Assign(sym("x"), MaxValue); err != nil {
		t.Fatalf("Assign with value=MaxValue = %v; want nil", err)
	}
}

func TestInsertionOrderDoesNotAffectLookup(t *testing.T) {
	patterns := []string{"zeta", "alpha", "beta", "al", "z"}
	orderA := New()
	orderB := New()
	for i, p := range patterns {
		if err := orderA.Assign(sym(p), uint32(i)); err != nil {
			t.Fatal(err)
		}
	}
	for i := len(patterns) - 1; i >= 0; i-- {
		if err := orderB.Assign(sym(patterns[i]), uint32(i)); err != nil {
			t.Fatal(err)
		}
	}
	for i, p := range patterns {
		va, _ := orderA.Lookup(sym(p))
		vb, _ := orderB.Lookup(sym(p))
		if va != vb || va != uint32(i) {
			t.Errorf("pattern %q: orderA=%d orderB=%d want %d", p, va, vb, i)
		}
	}
}

func TestContains(t *testing.T) {
	d := New()
	_ = d.Assign(sym("go"), 1)
	if !d.Contains(sym("go")) {
		t.Errorf("Contains(go) = false; want true")
	}
	if d.Contains(sym("gopher")) {
		t.Errorf("Contains(gopher) = true; want false")
	}
}

func TestLen(t *testing.T) {
	d := New()
	_ = d.Assign(sym("a"), 0)
	_ = d.Assign(sym("ab"), 1)
	_ = d.Assign(sym("a"), 2) // overwrite, not a new pattern
	if got := d.Len(); got != 2 {
		t.Errorf("Len() = %d; want 2", got)
	}
}

func TestPrefixEnumerate(t *testing.T) {
	d := New()
	_ = d.Assign(sym("key1"), 0)
	_ = d.Assign(sym("key2"), 11)
	_ = d.Assign(sym("other"), 5)

	got := d.PrefixEnumerate(sym("ke"))
	gotSet := map[string]uint32{}
	for _, s := range got {
		gotSet[ToString(s.Symbols)] = s.Value
	}
	want := map[string]uint32{"y1": 0, "y2": 11}
	if !reflect.DeepEqual(gotSet, want) {
		t.Errorf("PrefixEnumerate(ke) = %v; want %v", gotSet, want)
	}
}

func TestPrefixEnumerateIncludesExactPrefix(t *testing.T) {
	d := New()
	_ = d.Assign(sym("bus"), 1)
	_ = d.Assign(sym("bugs"), 2)

	got := d.PrefixEnumerate(sym("bus"))
	if len(got) != 1 || len(got[0].Symbols) != 0 || got[0].Value != 1 {
		t.Fatalf("PrefixEnumerate(bus) = %+v; want single empty-suffix hit with value 1", got)
	}
}

func TestPrefixEnumerateMissingPrefix(t *testing.T) {
	d := New()
	_ = d.Assign(sym("abc"), 1)
	if got := d.PrefixEnumerate(sym("xyz")); len(got) != 0 {
		t.Errorf("PrefixEnumerate(xyz) = %v; want empty", got)
	}
}

func TestBusBugsTopology(t *testing.T) {
	d := New()
	_ = d.Assign(sym("bus"), 1)
	_ = d.Assign(sym("bugs"), 2)

	root := d.store.get(0)
	bIdx := root.child
	if bIdx == 0 || d.store.get(bIdx).symbol != 'b' {
		t.Fatalf("root child should be 'b'")
	}
	uIdx := d.store.get(bIdx).child
	if uIdx == 0 || d.store.get(uIdx).symbol != 'u' {
		t.Fatalf("'b' child should be 'u'")
	}
	// Head insertion: 'g' (from "bugs") is spliced in front of 's' (from "bus").
	gIdx := d.store.get(uIdx).child
	if gIdx == 0 || d.store.get(gIdx).symbol != 'g' {
		t.Fatalf("'u' child should be 'g'")
	}
	sIdx := d.store.get(gIdx).sibling
	if sIdx == 0 || d.store.get(sIdx).symbol != 's' {
		t.Fatalf("'g' sibling should be 's'")
	}
	s2Idx := d.store.get(gIdx).child
	if s2Idx == 0 || d.store.get(s2Idx).symbol != 's' {
		t.Fatalf("'g' child should be 's'")
	}
}

func sortedPatternSet(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = ToString(h.Pattern)
	}
	sort.Strings(out)
	return out
}

func TestPropertyRandomAssignLookup(t *testing.T) {
	rng := newLCG(12345)
	alphabet := []rune("abcdefghijklmnop")

	var patterns []string
	seen := map[string]bool{}
	for len(patterns) < 200 {
		length := 1 + int(rng.next()%6)
		buf := make([]rune, length)
		for i := range buf {
			buf[i] = alphabet[rng.next()%uint64(len(alphabet))]
		}
		p := string(buf)
		if !seen[p] {
			seen[p] = true
			patterns = append(patterns, p)
		}
	}

	d := New()
	values := make(map[string]uint32, len(patterns))
	for i, p := range patterns {
		v := uint32(i)
		values[p] = v
		if err := d.Assign(sym(p), v); err != nil {
			t.Fatalf("Assign(%q) = %v", p, err)
		}
	}

	for _, p := range patterns {
		got, ok := d.Lookup(sym(p))
		if !ok || got != values[p] {
			t.Errorf("Lookup(%q) = (%d, %v); want (%d, true)", p, got, ok, values[p])
		}
	}

	for i := 0; i < 50; i++ {
		length := 1 + int(rng.next()%8)
		buf := make([]rune, length)
		for j := range buf {
			buf[j] = alphabet[rng.next()%uint64(len(alphabet))]
		}
		q := string(buf)
		if seen[q] {
			continue
		}
		if _, ok := d.Lookup(sym(q)); ok {
			t.Errorf("Lookup(%q) = ok=true for a never-assigned pattern", q)
		}
	}
}

// lcg is a tiny deterministic pseudo-random generator used to drive the
// property tests without pulling in math/rand's global state -- adapted
// from the generator pattern gaissmai/bart's internal/tests/random package
// uses for reproducible prefix fuzzing.
type lcg struct{ state uint64 }

func newLCG(seed uint64) *lcg { return &lcg{state: seed} }

func (g *lcg) next() uint64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return g.state >> 1
}
