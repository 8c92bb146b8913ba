package mol

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/sanonone/molgraph/pkg/geom"
)

type traceSnapshot struct {
	primary   map[uint32]uint32
	secondary map[uint32][]uint32
	ends      map[uint32][2]uint32
	closure   map[uint32]bool
	roots     []uint32
}

func snapshotTrace(e *Entity) traceSnapshot {
	s := traceSnapshot{
		primary:   map[uint32]uint32{},
		secondary: map[uint32][]uint32{},
		ends:      map[uint32][2]uint32{},
		closure:   map[uint32]bool{},
		roots:     append([]uint32(nil), e.fragments...),
	}
	e.forEachAtomSlot(func(slot uint32) {
		s.primary[slot] = e.atoms[slot].primary
		s.secondary[slot] = append([]uint32(nil), e.atoms[slot].secondary...)
	})
	for i := range e.bonds {
		if e.bonds[i].alive {
			s.ends[uint32(i)] = [2]uint32{e.bonds[i].first, e.bonds[i].second}
			s.closure[uint32(i)] = e.bonds[i].closure
		}
	}
	return s
}

func (s traceSnapshot) equal(o traceSnapshot) bool {
	if len(s.roots) != len(o.roots) {
		return false
	}
	for i := range s.roots {
		if s.roots[i] != o.roots[i] {
			return false
		}
	}
	for k, v := range s.primary {
		if o.primary[k] != v {
			return false
		}
	}
	for k, v := range s.secondary {
		w := o.secondary[k]
		if len(v) != len(w) {
			return false
		}
		for i := range v {
			if v[i] != w[i] {
				return false
			}
		}
	}
	for k, v := range s.ends {
		if o.ends[k] != v || o.closure[k] != s.closure[k] {
			return false
		}
	}
	return true
}

func TestTraceRing(t *testing.T) {
	// 1. Three atoms bonded A-B, B-C, C-A: no atom is free to be a root.
	ent := NewEntity("ring")
	ch, _ := ent.InsertChain("A")
	r, _ := ent.AppendResidue(ch, "RNG")
	a := mustAtom(t, ent, r, "A", geom.V(0, 0, 0), "C")
	b := mustAtom(t, ent, r, "B", geom.V(1.5, 0, 0), "C")
	c := mustAtom(t, ent, r, "C", geom.V(0.75, 1.3, 0), "C")
	ab := mustConnect(t, ent, a, b)
	bc := mustConnect(t, ent, b, c)
	ca := mustConnect(t, ent, c, a)

	// 2. Trace.
	roots, err := ent.Fragments()
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}

	// 3. C-A has the largest index gap; it is reversed and A becomes the root.
	if len(roots) != 1 || roots[0] != a {
		t.Fatalf("roots = %v, want [A]", roots)
	}
	if pb, ok := b.PrimaryBond(); !ok || pb != ab || pb.First() != a {
		t.Errorf("B primary = %v, want A->B", pb)
	}
	if pc, ok := c.PrimaryBond(); !ok || pc != ca || pc.First() != a {
		t.Errorf("C primary = %v, want A->C", pc)
	}
	if _, ok := a.PrimaryBond(); ok {
		t.Error("root has a primary bond")
	}
	if !bc.IsClosure() {
		t.Error("B-C should close the ring")
	}
	if ab.IsClosure() || ca.IsClosure() {
		t.Error("tree bonds flagged as closures")
	}
	if bc.First() != b || bc.Second() != c {
		t.Errorf("closure oriented %v -> %v, want B -> C", bc.First(), bc.Second())
	}
}

func TestTraceIsIdempotent(t *testing.T) {
	bb := buildGly(t, 5)
	ent := bb.ent
	// Close a ring inside the chain as well.
	mustConnect(t, ent, bb.o[1], bb.n[3])

	if err := ent.TraceDirectionality(); err != nil {
		t.Fatal(err)
	}
	first := snapshotTrace(ent)
	for i := 0; i < 3; i++ {
		if err := ent.TraceDirectionality(); err != nil {
			t.Fatal(err)
		}
		if !first.equal(snapshotTrace(ent)) {
			t.Fatalf("trace %d differs from the first one", i+2)
		}
	}
}

func TestTraceTreeShape(t *testing.T) {
	bb := buildGly(t, 3)
	ent := bb.ent
	roots, err := ent.Fragments()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0] != bb.n[0] {
		t.Fatalf("roots = %v, want [N1]", roots)
	}

	// Every non-root atom has exactly one primary bond whose second endpoint
	// is the atom itself.
	for _, a := range ent.Atoms() {
		pb, ok := a.PrimaryBond()
		if a == bb.n[0] {
			continue
		}
		if !ok {
			t.Errorf("atom %s has no primary bond", a.QualifiedName())
			continue
		}
		if pb.Second() != a {
			t.Errorf("primary bond of %s points at %s", a.QualifiedName(), pb.Second().QualifiedName())
		}
		for _, sb := range a.SecondaryBonds() {
			if sb == pb {
				t.Errorf("%s lists its primary bond as secondary", a.QualifiedName())
			}
		}
	}
	if ent.Dirty().Trace {
		t.Error("trace flag still set after Fragments")
	}
}

func TestTraceDisconnectedFragments(t *testing.T) {
	bb := buildGly(t, 2)
	ent := bb.ent
	ch, _ := ent.InsertChain("W")
	for i := 0; i < 3; i++ {
		r, _ := ent.AppendResidue(ch, "HOH")
		mustAtom(t, ent, r, "O", geom.V(20+float64(i)*3, 0, 0), "O")
	}
	roots, err := ent.Fragments()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 4 {
		t.Errorf("fragments = %d, want 4", len(roots))
	}

	// Deleting the peptide bond splits the chain.
	b, ok := ent.FindBond(bb.c[0], bb.n[1])
	if !ok {
		t.Fatal("peptide bond missing")
	}
	if err := ent.DeleteBond(b); err != nil {
		t.Fatal(err)
	}
	if !ent.Dirty().Trace {
		t.Error("deleting a bond must dirty the trace")
	}
	roots, _ = ent.Fragments()
	if len(roots) != 5 {
		t.Errorf("fragments after split = %d, want 5", len(roots))
	}
}

func TestTraceLongChain(t *testing.T) {
	ent := NewEntity("long")
	ch, _ := ent.InsertChain("A")
	r, _ := ent.AppendResidue(ch, "UNK")
	const n = 20000
	prev := mustAtom(t, ent, r, "C", geom.V(0, 0, 0), "C")
	for i := 1; i < n; i++ {
		a := mustAtom(t, ent, r, "C", geom.V(float64(i)*1.5, float64(i%2)*0.5, 0), "C")
		mustConnect(t, ent, prev, a)
		prev = a
	}
	roots, err := ent.Fragments()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("fragments = %d, want 1", len(roots))
	}
	if err := ent.EnableICS(); err != nil {
		t.Fatal(err)
	}
}

func TestTraceFailureIsLoggedByAccessors(t *testing.T) {
	var logs bytes.Buffer
	ent := NewEntityWithOptions("locked", Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	chain, err := ent.InsertChain("A")
	if err != nil {
		t.Fatal(err)
	}
	r, err := ent.AppendResidue(chain, "GLY")
	if err != nil {
		t.Fatal(err)
	}
	a := mustAtom(t, ent, r, "N", geom.V(0, 0, 0), "N")
	b := mustAtom(t, ent, r, "CA", geom.V(1.46, 0, 0), "C")
	bond := mustConnect(t, ent, a, b)

	// 1. Drop the bond from both adjacency lists so the walk cannot reach
	// the second atom and no bond is left to cut.
	for _, slot := range []uint32{a.slot, b.slot} {
		ent.atoms[slot].primary = noSlot
		ent.atoms[slot].secondary = nil
	}
	ent.dirty.trace = true

	// 2. Accessors keep working and log the failure with their name.
	_, _ = b.PrimaryBond()
	_ = a.SecondaryBonds()
	_ = bond.IsClosure()
	out := logs.String()
	for _, op := range []string{"PrimaryBond", "SecondaryBonds", "IsClosure"} {
		if !strings.Contains(out, "op="+op) {
			t.Errorf("log does not name %s:\n%s", op, out)
		}
	}
	if !strings.Contains(out, ErrLockedState.Error()) {
		t.Errorf("log does not carry the trace error:\n%s", out)
	}

	// 3. The error-returning entry points report it.
	if _, err := ent.Fragments(); !errors.Is(err, ErrLockedState) {
		t.Errorf("Fragments error = %v, want ErrLockedState", err)
	}
	if err := ent.TraceDirectionality(); !errors.Is(err, ErrLockedState) {
		t.Errorf("TraceDirectionality error = %v, want ErrLockedState", err)
	}
}
