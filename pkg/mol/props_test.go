package mol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/molgraph/pkg/geom"
)

func TestGenericValueCoercion(t *testing.T) {
	assert.Equal(t, 3.5, StringValue(" 3.5 ").AsFloat(0))
	assert.Equal(t, -1.0, StringValue("abc").AsFloat(-1))
	assert.Equal(t, 1.0, BoolValue(true).AsFloat(0))
	assert.Equal(t, int64(7), FloatValue(7.9).AsInt(0))
	assert.Equal(t, int64(12), StringValue("12.0").AsInt(0))
	assert.True(t, StringValue("Yes").AsBool(false))
	assert.False(t, StringValue("0").AsBool(true))
	assert.True(t, StringValue("maybe").AsBool(true))
	assert.True(t, IntValue(2).AsBool(false))
	assert.Equal(t, "42", IntValue(42).AsString())
	assert.Equal(t, geom.V(1, 2, 3), VecValue(geom.V(1, 2, 3)).AsVec(geom.Vec{}))
	assert.Equal(t, geom.V(9, 9, 9), IntValue(1).AsVec(geom.V(9, 9, 9)))

	assert.True(t, IntValue(1).Equal(IntValue(1)))
	assert.False(t, IntValue(1).Equal(FloatValue(1)))
}

func TestPropsBag(t *testing.T) {
	bb := buildGly(t, 1)
	p := bb.ca[0].Props()
	p.Set("label", StringValue("alpha"))
	p.Set("weight", FloatValue(1.25))
	p.Set("count", IntValue(3))

	assert.Equal(t, []string{"count", "label", "weight"}, p.Keys())
	assert.Equal(t, 1.25, p.Float("weight", 0))
	assert.Equal(t, 3.0, p.Float("count", 0))
	assert.Equal(t, "fallback", p.String("missing", "fallback"))
	assert.True(t, p.Has("label"))

	p.Remove("label")
	assert.False(t, p.Has("label"))
	assert.Equal(t, 2, p.Len())

	// Props are per node.
	assert.Equal(t, 0, bb.n[0].Props().Len())
}

func TestBuiltinProperties(t *testing.T) {
	bb := buildGly(t, 2)
	bb.chain.SetType(ChainTypePolypeptide)
	a := bb.ca[1]

	x, err := a.FloatProperty("x")
	require.NoError(t, err)
	assert.Equal(t, a.Pos().X, x)

	rnum, err := a.FloatProperty("rnum")
	require.NoError(t, err)
	assert.Equal(t, 2.0, rnum)

	name, err := a.StringProperty("CNAME")
	require.NoError(t, err)
	assert.Equal(t, "A", name)

	alias, err := a.StringProperty("chain")
	require.NoError(t, err)
	assert.Equal(t, "A", alias)

	peptide, err := bb.res[0].StringProperty("peptide")
	require.NoError(t, err)
	assert.Equal(t, "true", peptide)

	protein, err := bb.res[0].StringProperty("protein")
	require.NoError(t, err)
	assert.Equal(t, "true", protein)

	_, err = bb.res[0].FloatProperty("aname")
	assert.ErrorIs(t, err, ErrProperty)

	_, err = bb.res[0].FloatProperty("rname")
	assert.ErrorIs(t, err, ErrProperty)

	_, err = a.FloatProperty("nonsense")
	var pe *PropertyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "nonsense", pe.Name)

	_, err = bb.chain.StringProperty("rnum")
	assert.ErrorIs(t, err, ErrProperty)

	ctype, err := bb.chain.StringProperty("ctype")
	require.NoError(t, err)
	assert.Equal(t, ChainTypePolypeptide.String(), ctype)
}

func TestResidueClassification(t *testing.T) {
	ent := NewEntity("class")
	ch, _ := ent.InsertChain("A")
	ala, _ := ent.AppendResidue(ch, "ALA")
	hoh, _ := ent.AppendResidue(ch, "HOH")
	da, _ := ent.AppendResidue(ch, "DA")

	assert.True(t, ala.IsPeptideLinking())
	assert.False(t, ala.IsProtein(), "no backbone atoms yet")
	for _, name := range []string{"N", "CA", "C"} {
		mustAtom(t, ent, ala, name, geom.V(0, 0, 0), name[:1])
	}
	assert.True(t, ala.IsProtein())

	assert.True(t, hoh.IsWater())
	assert.True(t, da.ChemClass().IsNucleotideLinking())
	assert.Equal(t, byte('A'), da.OneLetterCode())

	require.NoError(t, ent.RenameResidue(ala, "TRP"))
	assert.Equal(t, byte('W'), ala.OneLetterCode())
	assert.Equal(t, "A.TRP1", ala.QualifiedName())
}

func TestAltLocations(t *testing.T) {
	ent := NewEntity("alt")
	ch, _ := ent.InsertChain("A")
	ser, _ := ent.AppendResidue(ch, "SER")
	ca := mustAtom(t, ent, ser, "CA", geom.V(0, 0, 0), "C")
	og, err := ent.InsertAltAtom(ser, "OG", "A", geom.V(1, 0, 0), "O", 0.6, 10, false)
	require.NoError(t, err)
	require.NoError(t, ent.AddAltAtomPos("B", og, geom.V(0, 1, 0), 0.4, 12))

	assert.True(t, ser.HasAltAtoms())
	assert.Equal(t, []string{"A", "B"}, ser.AltGroupNames())
	assert.Equal(t, "A", ser.ActiveAltGroup())
	assert.Equal(t, geom.V(1, 0, 0), og.Pos())

	// 1. Switch to B.
	require.NoError(t, ent.SwitchAltGroup(ser, "B"))
	assert.Equal(t, geom.V(0, 1, 0), og.Pos())
	assert.Equal(t, 0.4, og.Occupancy())
	assert.Equal(t, geom.V(0, 0, 0), ca.Pos(), "atoms without alternates stay put")

	// 2. Edits in B survive a round trip through A.
	ed := ent.EditXCS(Buffered)
	require.NoError(t, ed.SetAtomPos(og, geom.V(0, 2, 0)))
	require.NoError(t, ed.Close())
	require.NoError(t, ent.SwitchAltGroup(ser, "A"))
	assert.Equal(t, geom.V(1, 0, 0), og.Pos())
	pos, ok := og.AltPos("B")
	require.True(t, ok)
	assert.Equal(t, geom.V(0, 2, 0), pos)

	// 3. Errors.
	assert.ErrorIs(t, ent.SwitchAltGroup(ser, "C"), ErrIntegrity)
	assert.ErrorIs(t, ent.AddAltAtomPos("B", ca, geom.V(0, 0, 0), 1, 1), ErrIntegrity)
	_, err = ent.InsertAltAtom(ser, "CB", "", geom.V(0, 0, 1), "C", 1, 1, false)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestRenumberAndReorder(t *testing.T) {
	ent := NewEntity("renum")
	ch, _ := ent.InsertChain("A")
	for _, n := range []int{5, 6, 9} {
		_, err := ent.AppendResidue(ch, "ALA", Num(n))
		require.NoError(t, err)
	}

	require.NoError(t, ent.RenumberChain(ch, 100, true))
	var got []int
	for _, r := range ch.Residues() {
		got = append(got, r.Number().Num)
	}
	assert.Equal(t, []int{100, 101, 104}, got)
	r, ok := ch.FindResidue(Num(104))
	require.True(t, ok)
	assert.Equal(t, 2, r.Index())

	require.NoError(t, ent.RenumberChain(ch, 1, false))
	got = got[:0]
	for _, r := range ch.Residues() {
		got = append(got, r.Number().Num)
	}
	assert.Equal(t, []int{1, 2, 3}, got)

	// Scramble, then sort.
	res := ch.Residues()
	require.NoError(t, ent.SetResidueNumber(res[0], Num(30)))
	assert.False(t, ch.InSequence())
	require.NoError(t, ent.ReorderResidues(ch))
	assert.True(t, ch.InSequence())
	assert.Equal(t, res[0], ch.Residues()[2])
	assert.Equal(t, 0, res[1].Index())
}
