package view

import (
	"github.com/sanonone/molgraph/pkg/mol"
)

// AddChain adds c to the view. Parent lookups always reuse existing nodes;
// CheckDuplicates also reuses an existing node for c itself.
func (v *EntityView) AddChain(c mol.ChainHandle, flags Flags) (*ChainView, error) {
	if err := v.owns(c.IsValid(), c.Entity()); err != nil {
		return nil, err
	}
	cv := v.chainView(c, flags.has(CheckDuplicates))
	if flags.has(IncludeResidues) {
		for _, r := range c.Residues() {
			v.addResidueTo(cv, r, flags)
		}
	}
	return cv, nil
}

// AddResidue adds r, creating its chain view when needed. With IncludeAtoms
// the residue's atoms follow.
func (v *EntityView) AddResidue(r mol.ResidueHandle, flags Flags) (*ResidueView, error) {
	if err := v.owns(r.IsValid(), r.Entity()); err != nil {
		return nil, err
	}
	cv := v.chainView(r.Chain(), true)
	return v.addResidueTo(cv, r, flags), nil
}

// AddAtom adds a, creating its residue and chain views when needed.
func (v *EntityView) AddAtom(a mol.AtomHandle, flags Flags) (*AtomView, error) {
	if err := v.owns(a.IsValid(), a.Entity()); err != nil {
		return nil, err
	}
	r := a.Residue()
	rv, ok := v.resIdx[r]
	if !ok {
		rv = v.addResidueTo(v.chainView(r.Chain(), true), r, flags&^IncludeAtoms)
	}
	return v.addAtomTo(rv, a, flags), nil
}

// AddBond adds b if the bond policy allows it: both atoms must be in the
// view, or one of them with ExclusiveBonds. It reports whether b is in the
// view afterwards.
func (v *EntityView) AddBond(b mol.BondHandle, flags Flags) (bool, error) {
	if err := v.owns(b.IsValid(), b.Entity()); err != nil {
		return false, err
	}
	if _, ok := v.bondIdx[b]; ok {
		return true, nil
	}
	first, second := v.ContainsAtom(b.First()), v.ContainsAtom(b.Second())
	if (first && second) || (flags.has(ExclusiveBonds) && (first || second)) {
		v.addBond(b)
		return true, nil
	}
	return false, nil
}

func (v *EntityView) owns(valid bool, ent *mol.Entity) error {
	if !valid {
		return mol.ErrInvalidHandle
	}
	if ent != v.ent {
		return &mol.IntegrityError{Msg: "node belongs to another entity than the view"}
	}
	return nil
}

func (v *EntityView) chainView(c mol.ChainHandle, reuse bool) *ChainView {
	if reuse {
		if cv, ok := v.chainIdx[c]; ok {
			return cv
		}
	}
	cv := &ChainView{view: v, handle: c}
	v.chains = append(v.chains, cv)
	v.chainIdx[c] = cv
	return cv
}

func (v *EntityView) addResidueTo(cv *ChainView, r mol.ResidueHandle, flags Flags) *ResidueView {
	rv, ok := v.resIdx[r]
	if !ok || !flags.has(CheckDuplicates) {
		rv = &ResidueView{chain: cv, handle: r}
		cv.residues = append(cv.residues, rv)
		v.resIdx[r] = rv
		v.nres++
	}
	if flags.has(IncludeAtoms) {
		for _, a := range r.Atoms() {
			v.addAtomTo(rv, a, flags)
		}
	}
	return rv
}

func (v *EntityView) addAtomTo(rv *ResidueView, a mol.AtomHandle, flags Flags) *AtomView {
	if flags.has(CheckDuplicates) {
		if av, ok := v.atomIdx[a.Index()]; ok && av.handle == a {
			return av
		}
	}
	av := &AtomView{residue: rv, handle: a, index: a.Index()}
	rv.atoms = append(rv.atoms, av)
	v.atomIdx[a.Index()] = av
	v.natoms++
	if !flags.has(NoBonds) {
		for _, b := range a.Bonds() {
			if _, ok := v.bondIdx[b]; ok {
				continue
			}
			if flags.has(ExclusiveBonds) || v.ContainsAtom(b.Other(a)) {
				v.addBond(b)
			}
		}
	}
	return av
}

// addBond records b and links it to whichever endpoints are in the view.
func (v *EntityView) addBond(b mol.BondHandle) *BondView {
	if bv, ok := v.bondIdx[b]; ok {
		return bv
	}
	first, second := b.First(), b.Second()
	bv := &BondView{
		view:   v,
		handle: b,
		ends:   [2]mol.AtomHandle{first, second},
		idx:    [2]uint32{first.Index(), second.Index()},
	}
	v.bonds = append(v.bonds, bv)
	v.bondIdx[b] = bv
	for _, a := range bv.ends {
		if av, ok := v.FindAtom(a); ok {
			av.bonds = append(av.bonds, bv)
		}
	}
	return bv
}

// RemoveChain drops the chain view of c with its residues, atoms and
// their bonds. It reports whether c was in the view.
func (v *EntityView) RemoveChain(c mol.ChainHandle) bool {
	cv, ok := v.chainIdx[c]
	if !ok {
		return false
	}
	for _, rv := range cv.residues {
		v.dropResidue(rv)
	}
	v.chains = removeNode(v.chains, cv)
	delete(v.chainIdx, c)
	return true
}

// RemoveResidue drops the residue view of r with its atoms. An emptied
// chain view stays.
func (v *EntityView) RemoveResidue(r mol.ResidueHandle) bool {
	rv, ok := v.resIdx[r]
	if !ok {
		return false
	}
	v.dropResidue(rv)
	rv.chain.residues = removeNode(rv.chain.residues, rv)
	return true
}

// RemoveAtom drops a and the bonds of the view that touch it.
func (v *EntityView) RemoveAtom(a mol.AtomHandle) bool {
	av, ok := v.FindAtom(a)
	if !ok {
		return false
	}
	v.dropAtom(av)
	av.residue.atoms = removeNode(av.residue.atoms, av)
	return true
}

func (v *EntityView) dropResidue(rv *ResidueView) {
	for _, av := range rv.atoms {
		v.dropAtom(av)
	}
	rv.atoms = nil
	if v.resIdx[rv.handle] == rv {
		delete(v.resIdx, rv.handle)
	}
	v.nres--
}

func (v *EntityView) dropAtom(av *AtomView) {
	for _, bv := range append([]*BondView(nil), av.bonds...) {
		v.dropBond(bv)
	}
	av.bonds = nil
	if v.atomIdx[av.index] == av {
		delete(v.atomIdx, av.index)
	}
	v.natoms--
}

func (v *EntityView) dropBond(bv *BondView) {
	if _, ok := v.bondIdx[bv.handle]; !ok {
		return
	}
	delete(v.bondIdx, bv.handle)
	v.bonds = removeNode(v.bonds, bv)
	for i, idx := range bv.idx {
		if av, ok := v.atomIdx[idx]; ok && av.handle == bv.ends[i] {
			av.bonds = removeNode(av.bonds, bv)
		}
	}
}

// Prune drops view nodes whose underlying chain, residue, atom or bond was
// deleted from the entity.
func (v *EntityView) Prune() {
	for _, bv := range v.Bonds() {
		if !bv.handle.IsValid() {
			v.dropBond(bv)
		}
	}
	for _, cv := range v.Chains() {
		if !cv.handle.IsValid() {
			for _, rv := range cv.residues {
				v.dropResidue(rv)
			}
			v.chains = removeNode(v.chains, cv)
			delete(v.chainIdx, cv.handle)
			continue
		}
		for _, rv := range cv.Residues() {
			if !rv.handle.IsValid() {
				v.dropResidue(rv)
				cv.residues = removeNode(cv.residues, rv)
				continue
			}
			for _, av := range rv.Atoms() {
				if !av.handle.IsValid() {
					v.dropAtom(av)
					rv.atoms = removeNode(rv.atoms, av)
				}
			}
		}
	}
}

func removeNode[T comparable](list []T, x T) []T {
	for i, y := range list {
		if y == x {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
