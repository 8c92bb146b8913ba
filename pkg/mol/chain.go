package mol

type chainNode struct {
	slotHeader
	name       string
	residues   []uint32
	inSequence bool
	shift      *shiftTable
	ctype      ChainType
	desc       string
	props      *Props
}

// InsertChain appends a new, empty chain. Chain names are unique within an
// entity.
func (e *Entity) InsertChain(name string) (ChainHandle, error) {
	if _, exists := e.chainByName[name]; exists {
		return ChainHandle{}, &DuplicateNameError{Name: name}
	}
	slot := allocSlot(&e.chains, &e.freeChains, chainNode{
		name:       name,
		inSequence: true,
		shift:      newShiftTable(),
	})
	e.chainList = append(e.chainList, slot)
	e.chainByName[name] = slot
	e.notifyTopology()
	return e.chainHandle(slot), nil
}

// FindChain looks a chain up by name.
func (e *Entity) FindChain(name string) (ChainHandle, bool) {
	slot, ok := e.chainByName[name]
	if !ok {
		return ChainHandle{}, false
	}
	return e.chainHandle(slot), true
}

// RenameChain changes a chain's name. The new name must not be taken.
func (e *Entity) RenameChain(c ChainHandle, name string) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := e.owns(c.ent, "chain"); err != nil {
		return err
	}
	n := &e.chains[c.slot]
	if n.name == name {
		return nil
	}
	if _, exists := e.chainByName[name]; exists {
		return &DuplicateNameError{Name: name}
	}
	delete(e.chainByName, n.name)
	n.name = name
	e.chainByName[name] = c.slot
	return nil
}

// DeleteChain removes a chain together with its residues, atoms, bonds and
// torsions.
func (e *Entity) DeleteChain(c ChainHandle) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := e.owns(c.ent, "chain"); err != nil {
		return err
	}
	e.deleteChain(c.slot)
	e.notifyTopology()
	return nil
}

func (e *Entity) deleteChain(slot uint32) {
	for len(e.chains[slot].residues) > 0 {
		rs := e.chains[slot].residues
		e.deleteResidue(rs[len(rs)-1])
	}
	delete(e.chainByName, e.chains[slot].name)
	e.chainList = removeSlot(e.chainList, slot)
	freeSlot(&e.chains, &e.freeChains, slot)
}

// Name returns the chain name.
func (c ChainHandle) Name() string { return c.node().name }

// Type returns the chain type.
func (c ChainHandle) Type() ChainType { return c.node().ctype }

// SetType sets the chain type.
func (c ChainHandle) SetType(t ChainType) { c.node().ctype = t }

// Description returns the free-text chain description.
func (c ChainHandle) Description() string { return c.node().desc }

// SetDescription sets the free-text chain description.
func (c ChainHandle) SetDescription(d string) { c.node().desc = d }

// Props returns the chain's generic properties.
func (c ChainHandle) Props() *Props {
	n := c.node()
	if n.props == nil {
		n.props = &Props{}
	}
	return n.props
}

// InSequence reports whether residue numbers are strictly ascending.
func (c ChainHandle) InSequence() bool { return c.node().inSequence }

// ResidueCount returns the number of residues in the chain.
func (c ChainHandle) ResidueCount() int { return len(c.node().residues) }

// AtomCount returns the number of atoms in the chain.
func (c ChainHandle) AtomCount() int {
	total := 0
	for _, rs := range c.node().residues {
		total += len(c.ent.residues[rs].atoms)
	}
	return total
}

// Residues returns the chain's residues in order.
func (c ChainHandle) Residues() []ResidueHandle {
	n := c.node()
	out := make([]ResidueHandle, len(n.residues))
	for i, rs := range n.residues {
		out[i] = c.ent.residueHandle(rs)
	}
	return out
}

// ResidueAt returns the residue at position i of the chain.
func (c ChainHandle) ResidueAt(i int) (ResidueHandle, bool) {
	n := c.node()
	if i < 0 || i >= len(n.residues) {
		return ResidueHandle{}, false
	}
	return c.ent.residueHandle(n.residues[i]), true
}

// Atoms returns all atoms of the chain in order.
func (c ChainHandle) Atoms() []AtomHandle {
	var out []AtomHandle
	for _, rs := range c.node().residues {
		for _, as := range c.ent.residues[rs].atoms {
			out = append(out, c.ent.atomHandle(as))
		}
	}
	return out
}

// FindResidue looks a residue up by number. In-sequence chains resolve the
// number through the shift table; others fall back to a linear scan.
func (c ChainHandle) FindResidue(num ResNum) (ResidueHandle, bool) {
	n := c.node()
	if n.inSequence {
		if n.shift.stale {
			n.shift.rebuild(c.ent, n.residues)
		}
		if i, ok := n.shift.lookup(num); ok {
			return c.ent.residueHandle(n.residues[i]), true
		}
		return ResidueHandle{}, false
	}
	for _, rs := range n.residues {
		if c.ent.residues[rs].num == num {
			return c.ent.residueHandle(rs), true
		}
	}
	return ResidueHandle{}, false
}

// FindResidue looks a residue up by chain name and number.
func (e *Entity) FindResidue(chain string, num ResNum) (ResidueHandle, bool) {
	c, ok := e.FindChain(chain)
	if !ok {
		return ResidueHandle{}, false
	}
	return c.FindResidue(num)
}

// FindAtom looks an atom up by chain name, residue number and atom name.
func (e *Entity) FindAtom(chain string, num ResNum, name string) (AtomHandle, bool) {
	r, ok := e.FindResidue(chain, num)
	if !ok {
		return AtomHandle{}, false
	}
	return r.FindAtom(name)
}

// Prev returns the residue before r in its chain.
func (r ResidueHandle) Prev() (ResidueHandle, bool) {
	i := r.Index()
	return r.Chain().ResidueAt(i - 1)
}

// Next returns the residue after r in its chain.
func (r ResidueHandle) Next() (ResidueHandle, bool) {
	i := r.Index()
	return r.Chain().ResidueAt(i + 1)
}

// recomputeSequence refreshes the in-sequence flag, the shift table and the
// residue positions of a chain after a bulk change.
func (e *Entity) recomputeSequence(slot uint32) {
	n := &e.chains[slot]
	n.inSequence = true
	for i, rs := range n.residues {
		e.residues[rs].index = i
		if i > 0 && !e.residues[n.residues[i-1]].num.Less(e.residues[rs].num) {
			n.inSequence = false
		}
	}
	if n.inSequence {
		n.shift.rebuild(e, n.residues)
	} else {
		n.shift.clear()
	}
}

func (e *Entity) reindexFrom(slot uint32, from int) {
	n := &e.chains[slot]
	for i := from; i < len(n.residues); i++ {
		e.residues[n.residues[i]].index = i
	}
}
