package mol

import (
	"math"
	"testing"

	"github.com/sanonone/molgraph/pkg/geom"
)

// backbone holds the atoms of a test peptide, one entry per residue.
type backbone struct {
	ent   *Entity
	chain ChainHandle
	res   []ResidueHandle
	n     []AtomHandle
	ca    []AtomHandle
	c     []AtomHandle
	o     []AtomHandle
}

// buildGly builds chain "A" with n glycines connected N-CA-C-O and
// peptide-bonded C(i)-N(i+1). Atoms sit on a zig-zag so no angle is
// degenerate.
func buildGly(t *testing.T, n int) *backbone {
	t.Helper()
	ent := NewEntity("test")
	chain, err := ent.InsertChain("A")
	if err != nil {
		t.Fatalf("InsertChain: %v", err)
	}
	bb := &backbone{ent: ent, chain: chain}
	k := 0
	next := func() geom.Vec {
		p := geom.V(float64(k)*1.4, float64(k%2)*0.8, 0.1*float64(k%3))
		k++
		return p
	}
	for i := 0; i < n; i++ {
		r, err := ent.AppendResidue(chain, "GLY")
		if err != nil {
			t.Fatalf("AppendResidue: %v", err)
		}
		nAt := mustAtom(t, ent, r, "N", next(), "N")
		ca := mustAtom(t, ent, r, "CA", next(), "C")
		c := mustAtom(t, ent, r, "C", next(), "C")
		side := 1.2
		if i%2 == 1 {
			side = -1.2
		}
		o := mustAtom(t, ent, r, "O", geom.V(c.Pos().X, c.Pos().Y+side, c.Pos().Z+0.5), "O")
		mustConnect(t, ent, nAt, ca)
		mustConnect(t, ent, ca, c)
		mustConnect(t, ent, c, o)
		if i > 0 {
			mustConnect(t, ent, bb.c[i-1], nAt)
		}
		bb.res = append(bb.res, r)
		bb.n = append(bb.n, nAt)
		bb.ca = append(bb.ca, ca)
		bb.c = append(bb.c, c)
		bb.o = append(bb.o, o)
	}
	return bb
}

func mustAtom(t *testing.T, ent *Entity, r ResidueHandle, name string, pos geom.Vec, ele string) AtomHandle {
	t.Helper()
	a, err := ent.InsertAtom(r, name, pos, ele, 1.0, 20.0, false)
	if err != nil {
		t.Fatalf("InsertAtom(%s): %v", name, err)
	}
	return a
}

func mustConnect(t *testing.T, ent *Entity, a, b AtomHandle) BondHandle {
	t.Helper()
	bond, err := ent.Connect(a, b, 1)
	if err != nil {
		t.Fatalf("Connect(%s, %s): %v", a, b, err)
	}
	return bond
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func nearAngle(a, b, tol float64) bool {
	return math.Abs(geom.NormalizeAngle(a-b)) <= tol
}
