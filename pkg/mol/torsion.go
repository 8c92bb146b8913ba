package mol

import "github.com/sanonone/molgraph/pkg/geom"

type torsionNode struct {
	slotHeader
	name  string
	atoms [4]uint32
	owner uint32 // residue of the second atom
}

// AddTorsion registers a named torsion over four atoms. The torsion is owned
// by the residue of a2, so backbone phi, psi and omega end up on the residue
// they describe.
func (e *Entity) AddTorsion(name string, a1, a2, a3, a4 AtomHandle) (TorsionHandle, error) {
	handles := [4]AtomHandle{a1, a2, a3, a4}
	var slots [4]uint32
	for i, a := range handles {
		if err := a.check(); err != nil {
			return TorsionHandle{}, err
		}
		if err := e.owns(a.ent, "atom"); err != nil {
			return TorsionHandle{}, err
		}
		slots[i] = a.slot
		for j := 0; j < i; j++ {
			if slots[j] == a.slot {
				return TorsionHandle{}, integrityf("torsion %s repeats atom %s", name, a.QualifiedName())
			}
		}
	}
	owner := e.atoms[a2.slot].residue
	slot := allocSlot(&e.torsions, &e.freeTorsions, torsionNode{name: name, atoms: slots, owner: owner})
	for _, as := range slots {
		e.atoms[as].torsions = append(e.atoms[as].torsions, slot)
	}
	e.residues[owner].torsions = append(e.residues[owner].torsions, slot)
	e.torsionCount++
	return e.torsionHandle(slot), nil
}

// DeleteTorsion removes a torsion. Its atoms are not touched.
func (e *Entity) DeleteTorsion(t TorsionHandle) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := e.owns(t.ent, "torsion"); err != nil {
		return err
	}
	e.deleteTorsion(t.slot)
	return nil
}

func (e *Entity) deleteTorsion(slot uint32) {
	tn := e.torsions[slot]
	for _, as := range tn.atoms {
		e.atoms[as].torsions = removeSlot(e.atoms[as].torsions, slot)
	}
	e.residues[tn.owner].torsions = removeSlot(e.residues[tn.owner].torsions, slot)
	freeSlot(&e.torsions, &e.freeTorsions, slot)
	e.torsionCount--
}

// Name returns the torsion name.
func (t TorsionHandle) Name() string { return t.node().name }

// Atoms returns the four atoms in order.
func (t TorsionHandle) Atoms() [4]AtomHandle {
	n := t.node()
	var out [4]AtomHandle
	for i, as := range n.atoms {
		out[i] = t.ent.atomHandle(as)
	}
	return out
}

// Residue returns the owning residue.
func (t TorsionHandle) Residue() ResidueHandle { return t.ent.residueHandle(t.node().owner) }

// Angle returns the current dihedral angle in radians, flushing pending
// internal coordinate edits first.
func (t TorsionHandle) Angle() float64 {
	t.node()
	t.ent.UpdateXCS()
	return t.ent.dihedral(t.node().atoms)
}

func (e *Entity) dihedral(slots [4]uint32) float64 {
	return geom.Dihedral(e.atoms[slots[0]].pos, e.atoms[slots[1]].pos, e.atoms[slots[2]].pos, e.atoms[slots[3]].pos)
}
