package view

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol"
	"github.com/sanonone/molgraph/pkg/query"
)

// twoChains builds chains A and B with 12 peptide-bonded residues each
// (N, CA, C, O) and a ligand chain L holding one iron atom.
func twoChains(t *testing.T) *mol.Entity {
	t.Helper()
	ent := mol.NewEntity("views")
	for ci, name := range []string{"A", "B"} {
		c, err := ent.InsertChain(name)
		require.NoError(t, err)
		var prevC mol.AtomHandle
		for i := 0; i < 12; i++ {
			key := "GLY"
			if i%2 == 1 {
				key = "ALA"
			}
			r, err := ent.AppendResidue(c, key)
			require.NoError(t, err)
			var atoms [4]mol.AtomHandle
			for j, an := range []string{"N", "CA", "C", "O"} {
				pos := geom.V(float64(i)*3.8+float64(j)*0.9, float64(ci)*10, 0)
				atoms[j], err = ent.InsertAtom(r, an, pos, an[:1], 1, 20, false)
				require.NoError(t, err)
			}
			for j := 0; j < 3; j++ {
				_, err := ent.Connect(atoms[j], atoms[j+1], 1)
				require.NoError(t, err)
			}
			if i > 0 {
				_, err := ent.Connect(prevC, atoms[0], 1)
				require.NoError(t, err)
			}
			prevC = atoms[2]
		}
	}
	l, err := ent.InsertChain("L")
	require.NoError(t, err)
	hem, err := ent.AppendResidue(l, "HEM", mol.Num(900))
	require.NoError(t, err)
	_, err = ent.InsertAtom(hem, "FE", geom.V(5, 5, 0), "FE", 1, 40, true)
	require.NoError(t, err)
	return ent
}

func names(v *EntityView) []string {
	var out []string
	for _, a := range v.Atoms() {
		out = append(out, a.Handle().QualifiedName())
	}
	sort.Strings(out)
	return out
}

func mustSelect(t *testing.T, ent *mol.Entity, q string, flags Flags) *EntityView {
	t.Helper()
	v, err := SelectString(ent, q, flags)
	require.NoError(t, err, "query %q", q)
	return v
}

func TestFullView(t *testing.T) {
	ent := twoChains(t)
	v := Full(ent)
	assert.Equal(t, ent.ChainCount(), v.ChainCount())
	assert.Equal(t, ent.ResidueCount(), v.ResidueCount())
	assert.Equal(t, ent.AtomCount(), v.AtomCount())
	assert.Equal(t, ent.BondCount(), v.BondCount())

	for _, a := range ent.Atoms() {
		av, ok := v.FindAtom(a)
		require.True(t, ok)
		assert.Equal(t, a, av.Handle())
	}
}

func TestSelectResidueNumberAcrossChains(t *testing.T) {
	ent := twoChains(t)
	v := mustSelect(t, ent, "rnum=10", 0)
	assert.Equal(t, 2, v.ChainCount())
	assert.Equal(t, 2, v.ResidueCount())
	for _, r := range v.Residues() {
		assert.Equal(t, 10, r.Number().Num)
		assert.Equal(t, 4, r.AtomCount())
	}
}

func TestSelectConjunctionMatchesIntersection(t *testing.T) {
	ent := twoChains(t)
	combined := mustSelect(t, ent, `aname="CA" and rnum>=5 and rnum<=10`, 0)
	ca := mustSelect(t, ent, "aname=CA", 0)
	window := mustSelect(t, ent, "rnum=5:10", 0)

	inter, err := Intersection(ca, window)
	require.NoError(t, err)
	assert.Equal(t, names(inter), names(combined))
	assert.Equal(t, 12, combined.AtomCount())
}

func TestSelectBondPolicies(t *testing.T) {
	ent := twoChains(t)

	inclusive := mustSelect(t, ent, "cname=A and rnum=3", 0)
	assert.Equal(t, 4, inclusive.AtomCount())
	assert.Equal(t, 3, inclusive.BondCount())

	exclusive := mustSelect(t, ent, "cname=A and rnum=3", ExclusiveBonds)
	// The two peptide bonds to residues 2 and 4 come along.
	assert.Equal(t, 5, exclusive.BondCount())
	for _, b := range exclusive.Bonds() {
		_, firstIn := b.First()
		_, secondIn := b.Second()
		assert.True(t, firstIn || secondIn)
	}

	none := mustSelect(t, ent, "cname=A and rnum=3", NoBonds)
	assert.Zero(t, none.BondCount())

	// Two consecutive residues share their peptide bond.
	pair := mustSelect(t, ent, "cname=A and rnum=3:4", 0)
	assert.Equal(t, 7, pair.BondCount())
}

func TestSelectMatchResidues(t *testing.T) {
	ent := twoChains(t)
	v := mustSelect(t, ent, "aname=CA and rnum=2", MatchResidues)
	assert.Equal(t, 8, v.AtomCount())
	assert.Equal(t, 2, v.ResidueCount())

	plain := mustSelect(t, ent, "aname=CA and rnum=2", 0)
	assert.Equal(t, 2, plain.AtomCount())
}

func TestSelectInvalidQuery(t *testing.T) {
	ent := twoChains(t)
	_, err := SelectString(ent, "rnum=", 0)
	var qe *query.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "rnum=", qe.Query)
}

func TestSelectFromView(t *testing.T) {
	ent := twoChains(t)
	chainA := mustSelect(t, ent, "cname=A", 0)
	sub, err := chainA.Select(query.New("aname=CA"), 0)
	require.NoError(t, err)
	assert.Equal(t, 12, sub.AtomCount())
	for _, a := range sub.Atoms() {
		assert.Equal(t, "A", a.Residue().Chain().Name())
	}

	// The sub-query sees the whole entity, the outer walk only chain A.
	near, err := chainA.Select(query.New("6 <> [aname=FE]"), 0)
	require.NoError(t, err)
	require.NotEmpty(t, near.Atoms())
	for _, a := range near.Atoms() {
		assert.Equal(t, "A", a.Residue().Chain().Name())
		assert.LessOrEqual(t, geom.Distance(a.Handle().Pos(), geom.V(5, 5, 0)), 6.0)
	}
}

func TestCompositionLaws(t *testing.T) {
	ent := twoChains(t)
	a := mustSelect(t, ent, "rnum<=6", 0)
	b := mustSelect(t, ent, "rnum>=4 or cname=L", 0)

	union, err := Union(a, b)
	require.NoError(t, err)
	inter, err := Intersection(a, b)
	require.NoError(t, err)
	diff, err := Difference(a, b)
	require.NoError(t, err)

	for _, x := range []*EntityView{a, b} {
		for _, av := range x.Atoms() {
			assert.True(t, union.ContainsAtom(av.Handle()), "union lacks %s", av.Handle().QualifiedName())
		}
	}
	for _, av := range inter.Atoms() {
		assert.True(t, a.ContainsAtom(av.Handle()))
		assert.True(t, b.ContainsAtom(av.Handle()))
	}
	for _, av := range diff.Atoms() {
		assert.True(t, a.ContainsAtom(av.Handle()))
		assert.False(t, b.ContainsAtom(av.Handle()))
	}
	assert.Equal(t, a.AtomCount()+b.AtomCount()-inter.AtomCount(), union.AtomCount())
	assert.Equal(t, a.AtomCount(), inter.AtomCount()+diff.AtomCount())
	assert.Equal(t, ent.AtomCount(), union.AtomCount())
	assert.Equal(t, ent.BondCount(), union.BondCount())

	other := Full(twoChains(t))
	_, err = Union(a, other)
	assert.ErrorIs(t, err, mol.ErrIntegrity)
}

func TestCopyIsIndependent(t *testing.T) {
	ent := twoChains(t)
	v := mustSelect(t, ent, "cname=B and rnum<3", 0)
	cp := v.Copy()
	assert.Equal(t, names(v), names(cp))
	assert.Equal(t, v.BondCount(), cp.BondCount())

	r, ok := ent.FindResidue("B", mol.Num(1))
	require.True(t, ok)
	require.True(t, cp.RemoveResidue(r))
	assert.Equal(t, 8, v.AtomCount())
	assert.Equal(t, 4, cp.AtomCount())
}

func TestAddAndRemove(t *testing.T) {
	ent := twoChains(t)
	v := New(ent)

	r, _ := ent.FindResidue("A", mol.Num(5))
	n, _ := r.FindAtom("N")
	ca, _ := r.FindAtom("CA")

	av, err := v.AddAtom(n, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v.ChainCount())
	assert.Equal(t, 1, v.ResidueCount())
	assert.Zero(t, v.BondCount())

	_, err = v.AddAtom(ca, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v.BondCount(), "N-CA once both atoms are in")
	assert.Len(t, av.Bonds(), 1)

	again, err := v.AddAtom(n, CheckDuplicates)
	require.NoError(t, err)
	assert.Same(t, av, again)
	assert.Equal(t, 2, v.AtomCount())

	_, err = v.AddResidue(r, CheckDuplicates|IncludeAtoms)
	require.NoError(t, err)
	assert.Equal(t, 4, v.AtomCount())
	assert.Equal(t, 1, v.ResidueCount())
	assert.Equal(t, 3, v.BondCount())

	require.True(t, v.RemoveAtom(ca))
	assert.Equal(t, 3, v.AtomCount())
	assert.Equal(t, 1, v.BondCount(), "only C-O is left")
	assert.False(t, v.ContainsAtom(ca))
	assert.False(t, v.RemoveAtom(ca))

	chainB, _ := ent.FindChain("B")
	_, err = v.AddChain(chainB, IncludeResidues|IncludeAtoms)
	require.NoError(t, err)
	assert.Equal(t, 3+48, v.AtomCount())
	require.True(t, v.RemoveChain(chainB))
	assert.Equal(t, 3, v.AtomCount())
	assert.Equal(t, 1, v.ChainCount())

	first, _ := ent.FindResidue("A", mol.Num(1))
	bond := first.Atoms()[0].Bonds()[0]
	ok, err := v.AddBond(bond, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	foreign := twoChains(t)
	_, err = v.AddAtom(foreign.Atoms()[0], 0)
	assert.ErrorIs(t, err, mol.ErrIntegrity)
	_, err = v.AddAtom(mol.AtomHandle{}, 0)
	assert.ErrorIs(t, err, mol.ErrInvalidHandle)
}

func TestPruneAfterDeletion(t *testing.T) {
	ent := twoChains(t)
	v := mustSelect(t, ent, "cname=A and rnum=2:4", 0)
	require.Equal(t, 12, v.AtomCount())
	require.Equal(t, 11, v.BondCount())

	r, _ := ent.FindResidue("A", mol.Num(3))
	require.NoError(t, ent.DeleteResidue(r))
	v.Prune()

	assert.Equal(t, 8, v.AtomCount())
	assert.Equal(t, 2, v.ResidueCount())
	assert.Equal(t, 6, v.BondCount())
	for _, av := range v.Atoms() {
		assert.True(t, av.Handle().IsValid())
	}
}

func TestGeometryAndVisitor(t *testing.T) {
	ent := twoChains(t)
	v := mustSelect(t, ent, "cname=A and rnum=1", 0)

	box := v.Bounds()
	assert.InDelta(t, 0, box.Min.X, 1e-12)
	assert.InDelta(t, 2.7, box.Max.X, 1e-12)
	assert.InDelta(t, 1.35, v.Center().X, 1e-12)

	var mass float64
	for _, a := range v.AtomHandles() {
		mass += a.Mass()
	}
	assert.InDelta(t, mass, v.Mass(), 1e-9)
	assert.Greater(t, v.Mass(), 0.0)

	hits := v.FindWithin(geom.V(0, 0, 0), 1.0)
	require.Len(t, hits, 2)

	var atoms, bonds int
	v.Apply(mol.VisitorFuncs{
		Atom: func(mol.AtomHandle) mol.ContinueStatus { atoms++; return mol.Continue },
		Bond: func(mol.BondHandle) mol.ContinueStatus { bonds++; return mol.Continue },
	})
	assert.Equal(t, 4, atoms)
	assert.Equal(t, 3, bonds)

	atoms = 0
	v.Apply(mol.VisitorFuncs{
		Residue: func(mol.ResidueHandle) mol.ContinueStatus { return mol.SkipChildren },
		Atom:    func(mol.AtomHandle) mol.ContinueStatus { atoms++; return mol.Continue },
	})
	assert.Zero(t, atoms)
}
