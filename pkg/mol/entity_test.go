package mol

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/sanonone/molgraph/pkg/geom"
)

func TestConnectIsIdempotent(t *testing.T) {
	bb := buildGly(t, 1)
	ent := bb.ent
	before := ent.BondCount()

	b1 := mustConnect(t, ent, bb.n[0], bb.ca[0])
	b2 := mustConnect(t, ent, bb.ca[0], bb.n[0])
	if b1 != b2 {
		t.Fatalf("Connect returned different bonds: %v vs %v", b1, b2)
	}
	if ent.BondCount() != before {
		t.Errorf("BondCount changed from %d to %d", before, ent.BondCount())
	}

	// Also after tracing, when one of them is a primary bond.
	if _, err := ent.Fragments(); err != nil {
		t.Fatal(err)
	}
	if b3 := mustConnect(t, ent, bb.ca[0], bb.n[0]); b3 != b1 {
		t.Errorf("Connect after trace returned %v, want %v", b3, b1)
	}
}

func TestConnectRejectsSelfBond(t *testing.T) {
	bb := buildGly(t, 1)
	_, err := bb.ent.Connect(bb.ca[0], bb.ca[0], 1)
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("self bond error = %v, want ErrIntegrity", err)
	}
}

func TestDuplicateChainName(t *testing.T) {
	ent := NewEntity("dup")
	if _, err := ent.InsertChain("A"); err != nil {
		t.Fatal(err)
	}
	_, err := ent.InsertChain("A")
	var dup *DuplicateNameError
	if !errors.As(err, &dup) || dup.Name != "A" {
		t.Fatalf("got %v, want DuplicateNameError for A", err)
	}
	if !errors.Is(err, ErrIntegrity) {
		t.Errorf("DuplicateNameError should unwrap to ErrIntegrity")
	}

	b, _ := ent.InsertChain("B")
	if err := ent.RenameChain(b, "A"); !errors.Is(err, ErrIntegrity) {
		t.Errorf("RenameChain onto existing name: %v", err)
	}
	if err := ent.RenameChain(b, "C"); err != nil {
		t.Fatal(err)
	}
	if c, ok := ent.FindChain("C"); !ok || c != b {
		t.Errorf("FindChain(C) = %v, %v", c, ok)
	}
}

func TestAppendResidueNumbering(t *testing.T) {
	ent := NewEntity("num")
	ch, _ := ent.InsertChain("A")
	r1, _ := ent.AppendResidue(ch, "ALA")
	r2, _ := ent.AppendResidue(ch, "GLY")
	r3, _ := ent.AppendResidue(ch, "SER", Num(10))
	r4, _ := ent.AppendResidue(ch, "SER")

	want := []int{1, 2, 10, 11}
	for i, r := range []ResidueHandle{r1, r2, r3, r4} {
		if r.Number().Num != want[i] {
			t.Errorf("residue %d numbered %v, want %d", i, r.Number(), want[i])
		}
	}
	if !ch.InSequence() {
		t.Error("ascending chain should be in sequence")
	}
	if r1.OneLetterCode() != 'A' || r2.OneLetterCode() != 'G' {
		t.Errorf("one letter codes: %c %c", r1.OneLetterCode(), r2.OneLetterCode())
	}
}

func TestInSequenceScenario(t *testing.T) {
	// 1. GLY1..GLY3 peptide.
	bb := buildGly(t, 3)
	if !bb.chain.InSequence() {
		t.Fatal("GLY1..3 should be in sequence")
	}

	// 2. Insert another residue numbered 2 between 1 and 2 without renumbering.
	r, err := bb.ent.InsertResidueAfter(bb.chain, 0, Num(2), "GLY")
	if err != nil {
		t.Fatal(err)
	}
	if bb.chain.InSequence() {
		t.Error("duplicate residue number must clear InSequence")
	}
	if r.Index() != 1 || bb.res[1].Index() != 2 {
		t.Errorf("indices after insert: new=%d old=%d", r.Index(), bb.res[1].Index())
	}

	// 3. Lookup still works through the linear fallback.
	if got, ok := bb.chain.FindResidue(Num(3)); !ok || got != bb.res[2] {
		t.Errorf("FindResidue(3) = %v, %v", got, ok)
	}

	// 4. Deleting the duplicate restores the order.
	if err := bb.ent.DeleteResidue(r); err != nil {
		t.Fatal(err)
	}
	if !bb.chain.InSequence() {
		t.Error("chain should be back in sequence after deleting the duplicate")
	}
}

func TestInsertResidueKeepsSequence(t *testing.T) {
	ent := NewEntity("ins")
	ch, _ := ent.InsertChain("A")
	ent.AppendResidue(ch, "ALA", Num(1))
	ent.AppendResidue(ch, "ALA", Num(5))
	mid, err := ent.InsertResidueBefore(ch, 1, Num(3), "GLY")
	if err != nil {
		t.Fatal(err)
	}
	if !ch.InSequence() {
		t.Fatal("1,3,5 should be in sequence")
	}
	if got, ok := ch.FindResidue(Num(3)); !ok || got != mid {
		t.Errorf("FindResidue(3) = %v, %v", got, ok)
	}
	if _, err := ent.InsertResidueBefore(ch, 7, Num(9), "GLY"); !errors.Is(err, ErrIntegrity) {
		t.Errorf("out of range insert: %v", err)
	}
}

func TestShiftTableLookup(t *testing.T) {
	ent := NewEntity("shift")
	ch, _ := ent.InsertChain("A")
	var nums []ResNum
	for i := 1; i <= 5; i++ {
		nums = append(nums, Num(i))
	}
	for i := 10; i <= 12; i++ {
		nums = append(nums, Num(i))
	}
	nums = append(nums, ResNum{Num: 12, InsCode: 'A'}, Num(13))
	for _, n := range nums {
		if _, err := ent.AppendResidue(ch, "ALA", n); err != nil {
			t.Fatal(err)
		}
	}
	if !ch.InSequence() {
		t.Fatal("chain should be in sequence")
	}
	// Windows: 1-5, 10-12, 12A, 13
	if w := ent.chains[ch.slot].shift.windows(); w != 4 {
		t.Errorf("shift windows = %d, want 4", w)
	}
	for i, n := range nums {
		r, ok := ch.FindResidue(n)
		if !ok || r.Index() != i {
			t.Errorf("FindResidue(%v) = %v, %v; want index %d", n, r, ok, i)
		}
	}
	for _, missing := range []ResNum{Num(0), Num(6), Num(9), {Num: 5, InsCode: 'B'}, Num(14)} {
		if _, ok := ch.FindResidue(missing); ok {
			t.Errorf("FindResidue(%v) found a residue", missing)
		}
	}
}

func TestDeleteResidueRemovesCrossBonds(t *testing.T) {
	bb := buildGly(t, 3)
	ent := bb.ent
	if ent.BondCount() != 11 {
		t.Fatalf("BondCount = %d, want 11", ent.BondCount())
	}
	deleted := bb.res[1].Atoms()

	if err := ent.DeleteResidue(bb.res[1]); err != nil {
		t.Fatal(err)
	}
	// Three intra-residue bonds and both peptide bonds go.
	if ent.BondCount() != 6 {
		t.Errorf("BondCount after delete = %d, want 6", ent.BondCount())
	}
	for _, b := range ent.Bonds() {
		for _, a := range deleted {
			if b.Contains(a) {
				t.Errorf("bond %v still references deleted atom", b)
			}
		}
		if !b.First().IsValid() || !b.Second().IsValid() {
			t.Errorf("bond %v has a dangling endpoint", b)
		}
	}
	if bb.c[0].BondCount() != 2 || bb.n[2].BondCount() != 1 {
		t.Errorf("neighbour bond counts: C1=%d N3=%d", bb.c[0].BondCount(), bb.n[2].BondCount())
	}
	for _, a := range deleted {
		if a.IsValid() {
			t.Errorf("atom %v still valid", a)
		}
	}
	if bb.res[1].IsValid() {
		t.Error("residue handle still valid")
	}
}

func TestCountsAndNoOrphans(t *testing.T) {
	bb := buildGly(t, 4)
	ent := bb.ent
	ch2, _ := ent.InsertChain("B")
	lig, _ := ent.AppendResidue(ch2, "HEM")
	mustAtom(t, ent, lig, "FE", geom.V(0, 0, 5), "FE")

	check := func(step string) {
		t.Helper()
		total := 0
		chains := map[ChainHandle]bool{}
		for _, c := range ent.Chains() {
			chains[c] = true
		}
		for _, r := range ent.Residues() {
			total += r.AtomCount()
		}
		if total != ent.AtomCount() {
			t.Errorf("%s: sum of residue atoms %d != AtomCount %d", step, total, ent.AtomCount())
		}
		for _, a := range ent.Atoms() {
			if !chains[a.Chain()] {
				t.Errorf("%s: atom %v has an unreachable chain", step, a)
			}
		}
	}

	check("initial")
	ent.DeleteAtom(bb.o[1])
	check("after atom delete")
	ent.DeleteResidue(bb.res[2])
	check("after residue delete")
	ent.DeleteChain(ch2)
	check("after chain delete")

	if ent.AtomCount() != 11 {
		t.Errorf("AtomCount = %d, want 11", ent.AtomCount())
	}
}

func TestStaleHandles(t *testing.T) {
	bb := buildGly(t, 1)
	a := bb.o[0]
	if err := bb.ent.DeleteAtom(a); err != nil {
		t.Fatal(err)
	}
	if a.IsValid() {
		t.Fatal("deleted atom handle still valid")
	}
	if err := bb.ent.RenameAtom(a, "OXT"); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("RenameAtom on stale handle: %v", err)
	}

	// The freed slot is reused, but the old handle must not alias the new atom.
	fresh := mustAtom(t, bb.ent, bb.res[0], "OXT", geom.V(1, 1, 1), "O")
	if fresh.slot != a.slot {
		t.Fatalf("slot %d not reused, got %d", a.slot, fresh.slot)
	}
	if a.IsValid() {
		t.Error("stale handle became valid after slot reuse")
	}
	if fresh.Index() == 3 {
		t.Error("atom index was reused")
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("getter on stale handle panicked with %v", r)
		}
	}()
	_ = a.Name()
}

func TestFindWithinMatchesBruteForce(t *testing.T) {
	ent := NewEntity("cloud")
	ch, _ := ent.InsertChain("A")
	r, _ := ent.AppendResidue(ch, "UNK")
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		p := geom.V(rng.Float64()*10, rng.Float64()*10, rng.Float64()*10)
		mustAtom(t, ent, r, "X", p, "C")
	}

	origin := geom.V(0, 0, 0)
	got := ent.FindWithin(origin, 5.0)

	var want []uint32
	for _, a := range ent.Atoms() {
		if geom.Distance(a.Pos(), origin) <= 5.0 {
			want = append(want, a.Index())
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	if len(got) != len(want) {
		t.Fatalf("FindWithin returned %d atoms, brute force %d", len(got), len(want))
	}
	for i := range got {
		if got[i].Index() != want[i] {
			t.Errorf("mismatch at %d: %d vs %d", i, got[i].Index(), want[i])
		}
	}

	// Incremental path: atoms added after the index was built are found.
	extra := mustAtom(t, ent, r, "Y", geom.V(0.1, 0.1, 0.1), "C")
	if hits := ent.FindWithin(origin, 0.5); len(hits) == 0 || hits[len(hits)-1] != extra {
		t.Errorf("new atom not found: %v", hits)
	}
	ent.DeleteAtom(extra)
	for _, h := range ent.FindWithin(origin, 0.5) {
		if h == extra {
			t.Error("deleted atom still indexed")
		}
	}
}

func TestFindNearest(t *testing.T) {
	bb := buildGly(t, 3)
	got := bb.ent.FindNearest(bb.ca[1].Pos(), 3)
	if len(got) != 3 {
		t.Fatalf("FindNearest returned %d", len(got))
	}
	if got[0].Atom != bb.ca[1] || got[0].Distance != 0 {
		t.Errorf("nearest = %v at %v, want CA2 at 0", got[0].Atom, got[0].Distance)
	}
	if got[1].Distance > got[2].Distance {
		t.Error("results not sorted by distance")
	}
}

type recordingObserver struct {
	topology int
	destroy  int
}

func (o *recordingObserver) OnTopologyChange(*Entity) { o.topology++ }
func (o *recordingObserver) OnDestroy(*Entity)        { o.destroy++ }

func TestObserversAndDestroy(t *testing.T) {
	bb := buildGly(t, 1)
	obs := &recordingObserver{}
	bb.ent.AddObserver(obs)
	bb.ent.AddObserver(obs)

	ch, _ := bb.ent.InsertChain("Z")
	if obs.topology != 1 {
		t.Errorf("topology notifications = %d, want 1", obs.topology)
	}

	bb.ent.Destroy()
	bb.ent.Destroy()
	if obs.destroy != 1 {
		t.Errorf("destroy notifications = %d, want 1", obs.destroy)
	}
	if bb.ent.AtomCount() != 0 || bb.ent.ChainCount() != 0 {
		t.Errorf("destroyed entity still has %d atoms, %d chains", bb.ent.AtomCount(), bb.ent.ChainCount())
	}
	if ch.IsValid() || bb.ca[0].IsValid() {
		t.Error("handles survive Destroy")
	}
}

func TestVisitor(t *testing.T) {
	bb := buildGly(t, 3)

	var atoms, residues, bonds int
	bb.ent.Apply(VisitorFuncs{
		Residue: func(r ResidueHandle) ContinueStatus {
			residues++
			if r == bb.res[1] {
				return SkipChildren
			}
			return Continue
		},
		Atom: func(AtomHandle) ContinueStatus { atoms++; return Continue },
		Bond: func(BondHandle) ContinueStatus { bonds++; return Continue },
	})
	if residues != 3 || atoms != 8 || bonds != 11 {
		t.Errorf("visited residues=%d atoms=%d bonds=%d, want 3/8/11", residues, atoms, bonds)
	}

	seen := 0
	bb.ent.Apply(VisitorFuncs{
		Atom: func(AtomHandle) ContinueStatus {
			seen++
			if seen == 5 {
				return Stop
			}
			return Continue
		},
		Bond: func(BondHandle) ContinueStatus {
			t.Error("bond visited after Stop")
			return Continue
		},
	})
	if seen != 5 {
		t.Errorf("Stop after %d atoms, want 5", seen)
	}
}

func TestTorsionLifecycle(t *testing.T) {
	bb := buildGly(t, 2)
	ent := bb.ent
	phi, err := ent.AddTorsion("PHI", bb.c[0], bb.n[1], bb.ca[1], bb.c[1])
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := bb.res[1].PhiTorsion(); !ok || got != phi {
		t.Errorf("PhiTorsion = %v, %v", got, ok)
	}
	if _, err := ent.AddTorsion("BAD", bb.n[0], bb.n[0], bb.ca[0], bb.c[0]); !errors.Is(err, ErrIntegrity) {
		t.Errorf("repeated atom torsion: %v", err)
	}

	ent.DeleteAtom(bb.c[0])
	if phi.IsValid() {
		t.Error("torsion survives deletion of one of its atoms")
	}
	if ent.TorsionCount() != 0 || len(bb.res[1].Torsions()) != 0 {
		t.Errorf("torsions left: %d", ent.TorsionCount())
	}
}
