package mol

import "sort"

// ContinueStatus tells a traversal how to proceed after visiting a node.
type ContinueStatus int

const (
	// Continue descends into the node's children.
	Continue ContinueStatus = iota
	// SkipChildren moves on to the next sibling.
	SkipChildren
	// Stop ends the traversal.
	Stop
)

// Visitor receives the nodes of an entity in hierarchical order: each chain,
// then its residues, then their atoms. Bonds are visited after the
// hierarchy.
type Visitor interface {
	VisitChain(c ChainHandle) ContinueStatus
	VisitResidue(r ResidueHandle) ContinueStatus
	VisitAtom(a AtomHandle) ContinueStatus
	VisitBond(b BondHandle) ContinueStatus
}

// BaseVisitor implements Visitor by continuing everywhere. Embed it to
// override only the callbacks you need.
type BaseVisitor struct{}

func (BaseVisitor) VisitChain(ChainHandle) ContinueStatus     { return Continue }
func (BaseVisitor) VisitResidue(ResidueHandle) ContinueStatus { return Continue }
func (BaseVisitor) VisitAtom(AtomHandle) ContinueStatus       { return Continue }
func (BaseVisitor) VisitBond(BondHandle) ContinueStatus       { return Continue }

// VisitorFuncs adapts closures to Visitor. Nil fields continue.
type VisitorFuncs struct {
	Chain   func(ChainHandle) ContinueStatus
	Residue func(ResidueHandle) ContinueStatus
	Atom    func(AtomHandle) ContinueStatus
	Bond    func(BondHandle) ContinueStatus
}

func (f VisitorFuncs) VisitChain(c ChainHandle) ContinueStatus {
	if f.Chain == nil {
		return Continue
	}
	return f.Chain(c)
}

func (f VisitorFuncs) VisitResidue(r ResidueHandle) ContinueStatus {
	if f.Residue == nil {
		return Continue
	}
	return f.Residue(r)
}

func (f VisitorFuncs) VisitAtom(a AtomHandle) ContinueStatus {
	if f.Atom == nil {
		return Continue
	}
	return f.Atom(a)
}

func (f VisitorFuncs) VisitBond(b BondHandle) ContinueStatus {
	if f.Bond == nil {
		return Continue
	}
	return f.Bond(b)
}

// Apply walks the entity with v. The visitor must not add or delete nodes.
func (e *Entity) Apply(v Visitor) {
	for _, c := range e.Chains() {
		switch v.VisitChain(c) {
		case Stop:
			return
		case SkipChildren:
			continue
		}
		if !c.applyResidues(v) {
			return
		}
	}
	for _, b := range e.Bonds() {
		if v.VisitBond(b) == Stop {
			return
		}
	}
}

// Apply walks the chain's residues and atoms with v.
func (c ChainHandle) Apply(v Visitor) {
	c.node()
	if v.VisitChain(c) == Continue {
		c.applyResidues(v)
	}
}

// Apply walks the residue's atoms with v.
func (r ResidueHandle) Apply(v Visitor) {
	r.node()
	if v.VisitResidue(r) == Continue {
		r.applyAtoms(v)
	}
}

func (c ChainHandle) applyResidues(v Visitor) bool {
	for _, r := range c.Residues() {
		switch v.VisitResidue(r) {
		case Stop:
			return false
		case SkipChildren:
			continue
		}
		if !r.applyAtoms(v) {
			return false
		}
	}
	return true
}

func (r ResidueHandle) applyAtoms(v Visitor) bool {
	for _, a := range r.Atoms() {
		if v.VisitAtom(a) == Stop {
			return false
		}
	}
	return true
}

func sortAtomsByIndex(atoms []AtomHandle) {
	sort.Slice(atoms, func(i, j int) bool {
		return atoms[i].ent.atoms[atoms[i].slot].index < atoms[j].ent.atoms[atoms[j].slot].index
	})
}
