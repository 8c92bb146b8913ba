package view

import (
	"github.com/sanonone/molgraph/pkg/mol"
)

// Copy returns an independent view with the same nodes, in the same order.
func (v *EntityView) Copy() *EntityView {
	out := New(v.ent)
	out.merge(v)
	return out
}

// merge re-adds every node of o with duplicate checks. Bonds of o are
// carried over as they are.
func (v *EntityView) merge(o *EntityView) {
	flags := CheckDuplicates | NoBonds
	for _, cv := range o.chains {
		dst := v.chainView(cv.handle, true)
		for _, rv := range cv.residues {
			rdst := v.addResidueTo(dst, rv.handle, flags)
			for _, av := range rv.atoms {
				v.addAtomTo(rdst, av.handle, flags)
			}
		}
	}
	for _, bv := range o.bonds {
		if bv.handle.IsValid() {
			v.addBond(bv.handle)
		}
	}
}

// closeBonds adds every bond whose two atoms are in the view, for bonds
// that span the two operands of a union.
func (v *EntityView) closeBonds() {
	for _, c := range v.chains {
		for _, r := range c.residues {
			for _, av := range r.atoms {
				if !av.handle.IsValid() {
					continue
				}
				for _, b := range av.handle.Bonds() {
					if _, ok := v.bondIdx[b]; ok {
						continue
					}
					if v.ContainsAtom(b.Other(av.handle)) {
						v.addBond(b)
					}
				}
			}
		}
	}
}

func sameEntity(a, b *EntityView) error {
	if a.ent != b.ent {
		return &mol.IntegrityError{Msg: "views belong to different entities"}
	}
	return nil
}

// Union returns a view holding the nodes of a followed by those of b that
// a lacks. Bonds between atoms of the result follow the inclusive policy.
func Union(a, b *EntityView) (*EntityView, error) {
	if err := sameEntity(a, b); err != nil {
		return nil, err
	}
	out := a.Copy()
	out.merge(b)
	out.closeBonds()
	return out, nil
}

// Intersection returns the atoms present in both views, in the order of a.
// Chains and residues come along with their atoms; bonds follow the
// inclusive policy.
func Intersection(a, b *EntityView) (*EntityView, error) {
	if err := sameEntity(a, b); err != nil {
		return nil, err
	}
	return filterAtoms(a, func(av *AtomView) bool { return b.ContainsAtom(av.handle) }), nil
}

// Difference returns the atoms of a that are not in b.
func Difference(a, b *EntityView) (*EntityView, error) {
	if err := sameEntity(a, b); err != nil {
		return nil, err
	}
	return filterAtoms(a, func(av *AtomView) bool { return !b.ContainsAtom(av.handle) }), nil
}

func filterAtoms(src *EntityView, keep func(*AtomView) bool) *EntityView {
	out := New(src.ent)
	for _, cv := range src.chains {
		var dst *ChainView
		for _, rv := range cv.residues {
			var rdst *ResidueView
			for _, av := range rv.atoms {
				if !keep(av) {
					continue
				}
				if dst == nil {
					dst = out.chainView(cv.handle, true)
				}
				if rdst == nil {
					rdst = out.addResidueTo(dst, rv.handle, CheckDuplicates)
				}
				out.addAtomTo(rdst, av.handle, CheckDuplicates)
			}
		}
	}
	return out
}
