package mol

import (
	"fmt"
	"strings"
)

type residueNode struct {
	slotHeader
	chain     uint32
	index     int
	key       string
	num       ResNum
	atoms     []uint32
	torsions  []uint32
	chemClass ChemClass
	secStruct SecStructure
	oneLetter byte
	ligand    bool
	alt       *altGroups
	props     *Props
}

func newResidueNode(chain uint32, key string, num ResNum) residueNode {
	info := lookupResidue(key)
	return residueNode{
		chain:     chain,
		key:       key,
		num:       num,
		chemClass: info.class,
		secStruct: SSCoil,
		oneLetter: info.code,
		ligand:    info.class == ChemNonPolymer,
	}
}

// AppendResidue adds a residue at the end of a chain. Without an explicit
// number the residue gets the previous number plus one, or 1 for the first
// residue of the chain.
func (e *Entity) AppendResidue(c ChainHandle, key string, num ...ResNum) (ResidueHandle, error) {
	if err := c.check(); err != nil {
		return ResidueHandle{}, err
	}
	if err := e.owns(c.ent, "chain"); err != nil {
		return ResidueHandle{}, err
	}
	var rn ResNum
	switch {
	case len(num) > 0:
		rn = num[0]
	case len(e.chains[c.slot].residues) > 0:
		last := e.chains[c.slot].residues[len(e.chains[c.slot].residues)-1]
		rn = e.residues[last].num.Next()
	default:
		rn = Num(1)
	}

	slot := allocSlot(&e.residues, &e.freeResidues, newResidueNode(c.slot, key, rn))
	cn := &e.chains[c.slot]
	if k := len(cn.residues); k > 0 && !e.residues[cn.residues[k-1]].num.Less(rn) {
		cn.inSequence = false
		cn.shift.clear()
	}
	e.residues[slot].index = len(cn.residues)
	cn.residues = append(cn.residues, slot)
	if cn.inSequence {
		cn.shift.push(rn, len(cn.residues)-1)
	}
	e.residueCount++
	e.notifyTopology()
	return e.residueHandle(slot), nil
}

// InsertResidueBefore inserts a residue before list position index of the
// chain. An index equal to the residue count appends.
func (e *Entity) InsertResidueBefore(c ChainHandle, index int, num ResNum, key string) (ResidueHandle, error) {
	return e.insertResidueAt(c, index, num, key)
}

// InsertResidueAfter inserts a residue after list position index of the chain.
func (e *Entity) InsertResidueAfter(c ChainHandle, index int, num ResNum, key string) (ResidueHandle, error) {
	return e.insertResidueAt(c, index+1, num, key)
}

func (e *Entity) insertResidueAt(c ChainHandle, pos int, num ResNum, key string) (ResidueHandle, error) {
	if err := c.check(); err != nil {
		return ResidueHandle{}, err
	}
	if err := e.owns(c.ent, "chain"); err != nil {
		return ResidueHandle{}, err
	}
	if pos < 0 || pos > len(e.chains[c.slot].residues) {
		return ResidueHandle{}, integrityf("residue position %d out of range [0,%d]", pos, len(e.chains[c.slot].residues))
	}
	if pos == len(e.chains[c.slot].residues) {
		return e.AppendResidue(c, key, num)
	}

	slot := allocSlot(&e.residues, &e.freeResidues, newResidueNode(c.slot, key, num))
	cn := &e.chains[c.slot]
	cn.residues = append(cn.residues, 0)
	copy(cn.residues[pos+1:], cn.residues[pos:])
	cn.residues[pos] = slot
	e.reindexFrom(c.slot, pos)

	if cn.inSequence {
		if pos > 0 && !e.residues[cn.residues[pos-1]].num.Less(num) {
			cn.inSequence = false
		}
		if !num.Less(e.residues[cn.residues[pos+1]].num) {
			cn.inSequence = false
		}
	}
	if cn.inSequence {
		cn.shift.stale = true
	} else {
		cn.shift.clear()
	}
	e.residueCount++
	e.notifyTopology()
	return e.residueHandle(slot), nil
}

// DeleteResidue removes a residue together with its atoms, their bonds and
// torsions.
func (e *Entity) DeleteResidue(r ResidueHandle) error {
	if err := r.check(); err != nil {
		return err
	}
	if err := e.owns(r.ent, "residue"); err != nil {
		return err
	}
	e.deleteResidue(r.slot)
	e.notifyTopology()
	return nil
}

func (e *Entity) deleteResidue(slot uint32) {
	for len(e.residues[slot].atoms) > 0 {
		as := e.residues[slot].atoms
		e.deleteAtom(as[len(as)-1])
	}
	for len(e.residues[slot].torsions) > 0 {
		e.deleteTorsion(e.residues[slot].torsions[0])
	}
	chain := e.residues[slot].chain
	cn := &e.chains[chain]
	pos := e.residues[slot].index
	cn.residues = append(cn.residues[:pos], cn.residues[pos+1:]...)
	freeSlot(&e.residues, &e.freeResidues, slot)
	e.residueCount--

	if cn.inSequence && pos == len(cn.residues) {
		// Dropping the tail keeps the remaining windows valid except the last.
		cn.shift.stale = true
		return
	}
	e.recomputeSequence(chain)
}

// RenameResidue changes a residue key and refreshes the derived one-letter
// code.
func (e *Entity) RenameResidue(r ResidueHandle, key string) error {
	if err := r.check(); err != nil {
		return err
	}
	if err := e.owns(r.ent, "residue"); err != nil {
		return err
	}
	n := &e.residues[r.slot]
	n.key = key
	n.oneLetter = lookupResidue(key).code
	return nil
}

// SetResidueNumber changes a residue number and refreshes the chain's
// sequence state.
func (e *Entity) SetResidueNumber(r ResidueHandle, num ResNum) error {
	if err := r.check(); err != nil {
		return err
	}
	if err := e.owns(r.ent, "residue"); err != nil {
		return err
	}
	e.residues[r.slot].num = num
	e.recomputeSequence(e.residues[r.slot].chain)
	return nil
}

// Key returns the residue name, e.g. "GLY".
func (r ResidueHandle) Key() string { return r.node().key }

// Number returns the residue number.
func (r ResidueHandle) Number() ResNum { return r.node().num }

// Index returns the residue position within its chain.
func (r ResidueHandle) Index() int { return r.node().index }

// Chain returns the owning chain.
func (r ResidueHandle) Chain() ChainHandle { return r.ent.chainHandle(r.node().chain) }

// QualifiedName returns "chain.KEYnum", e.g. "A.GLY12".
func (r ResidueHandle) QualifiedName() string {
	n := r.node()
	return fmt.Sprintf("%s.%s%s", r.ent.chains[n.chain].name, n.key, n.num)
}

// ChemClass returns the residue's chemical class.
func (r ResidueHandle) ChemClass() ChemClass { return r.node().chemClass }

// SetChemClass overrides the chemical class derived from the key.
func (r ResidueHandle) SetChemClass(c ChemClass) { r.node().chemClass = c }

// SecStructure returns the secondary structure code.
func (r ResidueHandle) SecStructure() SecStructure { return r.node().secStruct }

// SetSecStructure sets the secondary structure code.
func (r ResidueHandle) SetSecStructure(s SecStructure) { r.node().secStruct = s }

// OneLetterCode returns the residue's one-letter code, '?' if unknown.
func (r ResidueHandle) OneLetterCode() byte { return r.node().oneLetter }

// SetOneLetterCode overrides the derived one-letter code.
func (r ResidueHandle) SetOneLetterCode(c byte) { r.node().oneLetter = c }

// IsPeptideLinking reports whether the chemical class links through
// peptide bonds.
func (r ResidueHandle) IsPeptideLinking() bool { return r.node().chemClass.IsPeptideLinking() }

// IsProtein reports whether the residue is peptide linking and carries a
// complete N, CA, C backbone.
func (r ResidueHandle) IsProtein() bool {
	if !r.IsPeptideLinking() {
		return false
	}
	_, n := r.FindAtom("N")
	_, ca := r.FindAtom("CA")
	_, c := r.FindAtom("C")
	return n && ca && c
}

// IsLigand reports whether the residue is flagged as a ligand.
func (r ResidueHandle) IsLigand() bool { return r.node().ligand }

// SetIsLigand sets the ligand flag.
func (r ResidueHandle) SetIsLigand(v bool) { r.node().ligand = v }

// IsWater reports whether the residue is a water molecule.
func (r ResidueHandle) IsWater() bool { return r.node().chemClass == ChemWater }

// Props returns the residue's generic properties.
func (r ResidueHandle) Props() *Props {
	n := r.node()
	if n.props == nil {
		n.props = &Props{}
	}
	return n.props
}

// AtomCount returns the number of atoms in the residue.
func (r ResidueHandle) AtomCount() int { return len(r.node().atoms) }

// Atoms returns the residue's atoms in insertion order.
func (r ResidueHandle) Atoms() []AtomHandle {
	n := r.node()
	out := make([]AtomHandle, len(n.atoms))
	for i, as := range n.atoms {
		out[i] = r.ent.atomHandle(as)
	}
	return out
}

// FindAtom looks an atom up by name. Names are compared exactly.
func (r ResidueHandle) FindAtom(name string) (AtomHandle, bool) {
	for _, as := range r.node().atoms {
		if r.ent.atoms[as].name == name {
			return r.ent.atomHandle(as), true
		}
	}
	return AtomHandle{}, false
}

// AverageBFactor returns the mean B-factor of the residue's atoms, or 0 for
// an empty residue.
func (r ResidueHandle) AverageBFactor() float64 {
	n := r.node()
	if len(n.atoms) == 0 {
		return 0
	}
	sum := 0.0
	for _, as := range n.atoms {
		sum += r.ent.atoms[as].bfac
	}
	return sum / float64(len(n.atoms))
}

// Torsions returns the torsions owned by the residue.
func (r ResidueHandle) Torsions() []TorsionHandle {
	n := r.node()
	out := make([]TorsionHandle, len(n.torsions))
	for i, ts := range n.torsions {
		out[i] = r.ent.torsionHandle(ts)
	}
	return out
}

// FindTorsion looks up a torsion owned by the residue by name
// (case-insensitive).
func (r ResidueHandle) FindTorsion(name string) (TorsionHandle, bool) {
	for _, ts := range r.node().torsions {
		if strings.EqualFold(r.ent.torsions[ts].name, name) {
			return r.ent.torsionHandle(ts), true
		}
	}
	return TorsionHandle{}, false
}

// PhiTorsion returns the residue's backbone phi torsion.
func (r ResidueHandle) PhiTorsion() (TorsionHandle, bool) { return r.FindTorsion("PHI") }

// PsiTorsion returns the residue's backbone psi torsion.
func (r ResidueHandle) PsiTorsion() (TorsionHandle, bool) { return r.FindTorsion("PSI") }

// OmegaTorsion returns the residue's backbone omega torsion.
func (r ResidueHandle) OmegaTorsion() (TorsionHandle, bool) { return r.FindTorsion("OMEGA") }
