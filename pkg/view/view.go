// Package view builds filtered projections over a molecular graph.
//
// A view holds its own chain, residue and atom lists but never copies atom
// data: every node wraps a handle of the underlying entity. Views are built
// by explicit Add calls or by running a query, and can be combined with
// Union, Intersection and Difference.
package view

import (
	"github.com/sanonone/molgraph/pkg/mol"
)

// Flags control how nodes are added to a view.
type Flags uint32

const (
	// CheckDuplicates looks up an existing view node before adding one.
	CheckDuplicates Flags = 1 << iota
	// IncludeResidues adds the residues of an added chain.
	IncludeResidues
	// IncludeAtoms adds the atoms of an added residue.
	IncludeAtoms
	// ExclusiveBonds adds a bond as soon as one endpoint is in the view.
	// By default both endpoints must be present.
	ExclusiveBonds
	// NoBonds skips bond bookkeeping entirely.
	NoBonds
	// MatchResidues makes Select add a whole residue when any of its atoms
	// matches.
	MatchResidues
)

func (f Flags) has(o Flags) bool { return f&o != 0 }

// EntityView is a subset of an entity.
type EntityView struct {
	ent      *mol.Entity
	chains   []*ChainView
	chainIdx map[mol.ChainHandle]*ChainView
	resIdx   map[mol.ResidueHandle]*ResidueView
	// atomIdx maps the stable atom index to its view node.
	atomIdx map[uint32]*AtomView
	bonds   []*BondView
	bondIdx map[mol.BondHandle]*BondView
	nres    int
	natoms  int
}

// ChainView is a chain inside a view.
type ChainView struct {
	view     *EntityView
	handle   mol.ChainHandle
	residues []*ResidueView
}

// ResidueView is a residue inside a view.
type ResidueView struct {
	chain  *ChainView
	handle mol.ResidueHandle
	atoms  []*AtomView
}

// AtomView is an atom inside a view.
type AtomView struct {
	residue *ResidueView
	handle  mol.AtomHandle
	index   uint32
	bonds   []*BondView
}

// BondView is a bond inside a view. With ExclusiveBonds one of its atoms
// may lie outside the view.
type BondView struct {
	view   *EntityView
	handle mol.BondHandle
	ends   [2]mol.AtomHandle
	idx    [2]uint32
}

// New returns an empty view over ent.
func New(ent *mol.Entity) *EntityView {
	return &EntityView{
		ent:      ent,
		chainIdx: make(map[mol.ChainHandle]*ChainView),
		resIdx:   make(map[mol.ResidueHandle]*ResidueView),
		atomIdx:  make(map[uint32]*AtomView),
		bondIdx:  make(map[mol.BondHandle]*BondView),
	}
}

// Full returns a view holding every chain, residue, atom and bond of ent.
func Full(ent *mol.Entity) *EntityView {
	v := New(ent)
	for _, c := range ent.Chains() {
		v.AddChain(c, IncludeResidues|IncludeAtoms|NoBonds)
	}
	for _, b := range ent.Bonds() {
		v.addBond(b)
	}
	return v
}

// Entity returns the entity the view projects.
func (v *EntityView) Entity() *mol.Entity { return v.ent }

func (v *EntityView) ChainCount() int   { return len(v.chains) }
func (v *EntityView) ResidueCount() int { return v.nres }
func (v *EntityView) AtomCount() int    { return v.natoms }
func (v *EntityView) BondCount() int    { return len(v.bonds) }

// IsEmpty reports whether the view holds no chains.
func (v *EntityView) IsEmpty() bool { return len(v.chains) == 0 }

// Chains returns the chain views in insertion order.
func (v *EntityView) Chains() []*ChainView {
	return append([]*ChainView(nil), v.chains...)
}

// Residues returns all residue views, chain by chain.
func (v *EntityView) Residues() []*ResidueView {
	out := make([]*ResidueView, 0, v.nres)
	for _, c := range v.chains {
		out = append(out, c.residues...)
	}
	return out
}

// Atoms returns all atom views in hierarchical order.
func (v *EntityView) Atoms() []*AtomView {
	out := make([]*AtomView, 0, v.natoms)
	for _, c := range v.chains {
		for _, r := range c.residues {
			out = append(out, r.atoms...)
		}
	}
	return out
}

// AtomHandles returns the handles of all atoms in the view.
func (v *EntityView) AtomHandles() []mol.AtomHandle {
	out := make([]mol.AtomHandle, 0, v.natoms)
	for _, c := range v.chains {
		for _, r := range c.residues {
			for _, a := range r.atoms {
				out = append(out, a.handle)
			}
		}
	}
	return out
}

// Bonds returns the bond views in insertion order.
func (v *EntityView) Bonds() []*BondView {
	return append([]*BondView(nil), v.bonds...)
}

// FindAtom returns the view node wrapping a, in constant time.
func (v *EntityView) FindAtom(a mol.AtomHandle) (*AtomView, bool) {
	if !a.IsValid() {
		return nil, false
	}
	av, ok := v.atomIdx[a.Index()]
	if !ok || av.handle != a {
		return nil, false
	}
	return av, true
}

// FindResidue returns the view node wrapping r.
func (v *EntityView) FindResidue(r mol.ResidueHandle) (*ResidueView, bool) {
	rv, ok := v.resIdx[r]
	return rv, ok
}

// FindChain returns the first chain view with the given name.
func (v *EntityView) FindChain(name string) (*ChainView, bool) {
	for _, c := range v.chains {
		if c.handle.IsValid() && c.handle.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// ContainsAtom reports whether a is in the view.
func (v *EntityView) ContainsAtom(a mol.AtomHandle) bool {
	_, ok := v.FindAtom(a)
	return ok
}

// ContainsBond reports whether b is in the view.
func (v *EntityView) ContainsBond(b mol.BondHandle) bool {
	_, ok := v.bondIdx[b]
	return ok
}

// --- ChainView ---

func (c *ChainView) Handle() mol.ChainHandle { return c.handle }
func (c *ChainView) View() *EntityView        { return c.view }
func (c *ChainView) Name() string             { return c.handle.Name() }
func (c *ChainView) ResidueCount() int        { return len(c.residues) }

// Residues returns the residue views of the chain.
func (c *ChainView) Residues() []*ResidueView {
	return append([]*ResidueView(nil), c.residues...)
}

// Atoms returns the atom views of the chain.
func (c *ChainView) Atoms() []*AtomView {
	var out []*AtomView
	for _, r := range c.residues {
		out = append(out, r.atoms...)
	}
	return out
}

// FindResidue returns the residue view with number num.
func (c *ChainView) FindResidue(num mol.ResNum) (*ResidueView, bool) {
	for _, r := range c.residues {
		if r.handle.IsValid() && r.handle.Number() == num {
			return r, true
		}
	}
	return nil, false
}

// --- ResidueView ---

func (r *ResidueView) Handle() mol.ResidueHandle { return r.handle }
func (r *ResidueView) Chain() *ChainView          { return r.chain }
func (r *ResidueView) Key() string                { return r.handle.Key() }
func (r *ResidueView) Number() mol.ResNum         { return r.handle.Number() }
func (r *ResidueView) AtomCount() int             { return len(r.atoms) }

// Atoms returns the atom views of the residue.
func (r *ResidueView) Atoms() []*AtomView {
	return append([]*AtomView(nil), r.atoms...)
}

// FindAtom returns the atom view with the given name.
func (r *ResidueView) FindAtom(name string) (*AtomView, bool) {
	for _, a := range r.atoms {
		if a.handle.IsValid() && a.handle.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// --- AtomView ---

func (a *AtomView) Handle() mol.AtomHandle { return a.handle }
func (a *AtomView) Residue() *ResidueView   { return a.residue }
func (a *AtomView) Name() string            { return a.handle.Name() }

// Bonds returns the bonds of the view that touch this atom.
func (a *AtomView) Bonds() []*BondView {
	return append([]*BondView(nil), a.bonds...)
}

// --- BondView ---

func (b *BondView) Handle() mol.BondHandle { return b.handle }

// First returns the view node of the bond's first atom, if it is in the view.
func (b *BondView) First() (*AtomView, bool) { return b.view.FindAtom(b.ends[0]) }

// Second returns the view node of the bond's second atom, if it is in the view.
func (b *BondView) Second() (*AtomView, bool) { return b.view.FindAtom(b.ends[1]) }
