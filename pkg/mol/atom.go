package mol

import (
	"fmt"

	"github.com/sanonone/molgraph/pkg/geom"
)

type atomNode struct {
	slotHeader
	index    uint32
	residue  uint32
	name     string
	element  string
	pos      geom.Vec // original position
	tpos     geom.Vec // position after the entity transform
	occ      float64
	bfac     float64
	charge   float64
	mass     float64
	radius   float64
	aniso    [6]float64
	hasAniso bool
	het      bool

	// primary is the bond toward the parent in the directionality tree,
	// noSlot for roots and untraced atoms. secondary holds every other bond
	// of the atom, sorted by bond slot.
	primary   uint32
	secondary []uint32
	torsions  []uint32
	props     *Props
}

// AtomSpec bundles the optional scalar attributes of a new atom.
type AtomSpec struct {
	Element   string
	Occupancy float64
	BFactor   float64
	IsHetAtom bool
}

// InsertAtom adds an atom to a residue. The atom receives a fresh stable
// index; if the entity carries a transform, the transformed position is
// computed right away.
func (e *Entity) InsertAtom(r ResidueHandle, name string, pos geom.Vec, element string, occupancy, bfactor float64, isHet bool) (AtomHandle, error) {
	if err := r.check(); err != nil {
		return AtomHandle{}, err
	}
	if err := e.owns(r.ent, "residue"); err != nil {
		return AtomHandle{}, err
	}
	info := lookupElement(element)
	idx := e.nextIndex
	e.nextIndex++
	slot := allocSlot(&e.atoms, &e.freeAtoms, atomNode{
		index:   idx,
		residue: r.slot,
		name:    name,
		element: element,
		pos:     pos,
		tpos:    e.transform.Apply(pos),
		occ:     occupancy,
		bfac:    bfactor,
		mass:    info.mass,
		radius:  info.radius,
		het:     isHet,
		primary: noSlot,
	})
	e.residues[r.slot].atoms = append(e.residues[r.slot].atoms, slot)
	e.indexToSlot[idx] = slot
	e.atomCount++

	if !e.dirty.organizer {
		e.organizer.Add(slot, e.atoms[slot].tpos)
	}
	// A new atom starts a fragment of its own.
	e.dirty.markTopologyChanged()
	e.notifyTopology()
	return e.atomHandle(slot), nil
}

// InsertAtomSpec is InsertAtom with the scalar attributes bundled.
func (e *Entity) InsertAtomSpec(r ResidueHandle, name string, pos geom.Vec, spec AtomSpec) (AtomHandle, error) {
	return e.InsertAtom(r, name, pos, spec.Element, spec.Occupancy, spec.BFactor, spec.IsHetAtom)
}

// DeleteAtom removes an atom together with its bonds and torsions.
func (e *Entity) DeleteAtom(a AtomHandle) error {
	if err := a.check(); err != nil {
		return err
	}
	if err := e.owns(a.ent, "atom"); err != nil {
		return err
	}
	e.deleteAtom(a.slot)
	e.notifyTopology()
	return nil
}

func (e *Entity) deleteAtom(slot uint32) {
	for _, bs := range e.atomBonds(slot) {
		e.deleteBond(bs)
	}
	for len(e.atoms[slot].torsions) > 0 {
		e.deleteTorsion(e.atoms[slot].torsions[0])
	}
	n := &e.atoms[slot]
	if !e.dirty.organizer {
		e.organizer.Remove(slot, n.tpos)
	}
	rn := &e.residues[n.residue]
	rn.atoms = removeSlot(rn.atoms, slot)
	if rn.alt != nil {
		rn.alt.forget(slot)
	}
	delete(e.indexToSlot, n.index)
	freeSlot(&e.atoms, &e.freeAtoms, slot)
	e.atomCount--
	e.dirty.markTopologyChanged()
}

// RenameAtom changes an atom's name.
func (e *Entity) RenameAtom(a AtomHandle, name string) error {
	if err := a.check(); err != nil {
		return err
	}
	if err := e.owns(a.ent, "atom"); err != nil {
		return err
	}
	e.atoms[a.slot].name = name
	return nil
}

// atomBonds returns every bond slot of an atom, primary first.
func (e *Entity) atomBonds(slot uint32) []uint32 {
	n := &e.atoms[slot]
	out := make([]uint32, 0, len(n.secondary)+1)
	if n.primary != noSlot {
		out = append(out, n.primary)
	}
	return append(out, n.secondary...)
}

// Name returns the atom name, e.g. "CA".
func (a AtomHandle) Name() string { return a.node().name }

// Element returns the element symbol.
func (a AtomHandle) Element() string { return a.node().element }

// SetElement changes the element symbol. Mass and radius are left alone.
func (a AtomHandle) SetElement(ele string) { a.node().element = ele }

// Index returns the atom's stable index. Indices are never reused within an
// entity.
func (a AtomHandle) Index() uint32 { return a.node().index }

// Pos returns the transformed position.
func (a AtomHandle) Pos() geom.Vec { return a.node().tpos }

// OriginalPos returns the position before the entity transform.
func (a AtomHandle) OriginalPos() geom.Vec { return a.node().pos }

func (a AtomHandle) Occupancy() float64 { return a.node().occ }
func (a AtomHandle) BFactor() float64   { return a.node().bfac }
func (a AtomHandle) Charge() float64    { return a.node().charge }
func (a AtomHandle) Mass() float64      { return a.node().mass }
func (a AtomHandle) Radius() float64    { return a.node().radius }
func (a AtomHandle) IsHetAtom() bool    { return a.node().het }

func (a AtomHandle) SetOccupancy(v float64) { a.node().occ = v }
func (a AtomHandle) SetBFactor(v float64)   { a.node().bfac = v }
func (a AtomHandle) SetCharge(v float64)    { a.node().charge = v }
func (a AtomHandle) SetMass(v float64)      { a.node().mass = v }
func (a AtomHandle) SetRadius(v float64)    { a.node().radius = v }
func (a AtomHandle) SetHetAtom(v bool)      { a.node().het = v }

// Aniso returns the anisotropic displacement tensor (U11 U22 U33 U12 U13
// U23) and whether one was set.
func (a AtomHandle) Aniso() ([6]float64, bool) {
	n := a.node()
	return n.aniso, n.hasAniso
}

// SetAniso sets the anisotropic displacement tensor.
func (a AtomHandle) SetAniso(u [6]float64) {
	n := a.node()
	n.aniso, n.hasAniso = u, true
}

// Residue returns the owning residue.
func (a AtomHandle) Residue() ResidueHandle { return a.ent.residueHandle(a.node().residue) }

// Chain returns the chain of the owning residue.
func (a AtomHandle) Chain() ChainHandle {
	return a.ent.chainHandle(a.ent.residues[a.node().residue].chain)
}

// QualifiedName returns "chain.KEYnum.name", e.g. "A.GLY12.CA".
func (a AtomHandle) QualifiedName() string {
	n := a.node()
	return fmt.Sprintf("%s.%s", a.ent.residueHandle(n.residue).QualifiedName(), n.name)
}

// Props returns the atom's generic properties.
func (a AtomHandle) Props() *Props {
	n := a.node()
	if n.props == nil {
		n.props = &Props{}
	}
	return n.props
}

// Bonds returns every bond of the atom, primary first.
func (a AtomHandle) Bonds() []BondHandle {
	a.node()
	slots := a.ent.atomBonds(a.slot)
	out := make([]BondHandle, len(slots))
	for i, bs := range slots {
		out[i] = a.ent.bondHandle(bs)
	}
	return out
}

// BondCount returns the number of bonds of the atom.
func (a AtomHandle) BondCount() int {
	n := a.node()
	c := len(n.secondary)
	if n.primary != noSlot {
		c++
	}
	return c
}

// BondPartners returns the atoms bonded to a.
func (a AtomHandle) BondPartners() []AtomHandle {
	a.node()
	slots := a.ent.atomBonds(a.slot)
	out := make([]AtomHandle, len(slots))
	for i, bs := range slots {
		out[i] = a.ent.atomHandle(a.ent.bonds[bs].other(a.slot))
	}
	return out
}

// IsBondedTo reports whether a and b share a bond.
func (a AtomHandle) IsBondedTo(b AtomHandle) bool {
	if !a.IsValid() || !b.IsValid() || a.ent != b.ent {
		return false
	}
	return a.ent.findBond(a.slot, b.slot) != noSlot
}

// PrimaryBond returns the bond toward the atom's parent in the
// directionality tree. Roots have none.
func (a AtomHandle) PrimaryBond() (BondHandle, bool) {
	a.node()
	a.ent.ensureTrace("PrimaryBond")
	n := a.node()
	if n.primary == noSlot {
		return BondHandle{}, false
	}
	return a.ent.bondHandle(n.primary), true
}

// SecondaryBonds returns the bonds leading away from the atom in the
// directionality tree, including ring closures.
func (a AtomHandle) SecondaryBonds() []BondHandle {
	a.node()
	a.ent.ensureTrace("SecondaryBonds")
	n := a.node()
	out := make([]BondHandle, len(n.secondary))
	for i, bs := range n.secondary {
		out[i] = a.ent.bondHandle(bs)
	}
	return out
}
