package mol

import "sort"

// RenumberChain assigns new residue numbers. With keepSpacing the numbers
// are shifted so the first residue gets start and gaps are preserved;
// otherwise residues are numbered start, start+1, ... and insertion codes
// are dropped.
func (e *Entity) RenumberChain(c ChainHandle, start int, keepSpacing bool) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := e.owns(c.ent, "chain"); err != nil {
		return err
	}
	e.renumber(c.slot, start, keepSpacing)
	return nil
}

// RenumberAllResidues renumbers every chain as RenumberChain does.
func (e *Entity) RenumberAllResidues(start int, keepSpacing bool) {
	for _, cs := range e.chainList {
		e.renumber(cs, start, keepSpacing)
	}
}

func (e *Entity) renumber(slot uint32, start int, keepSpacing bool) {
	residues := e.chains[slot].residues
	if len(residues) == 0 {
		return
	}
	offset := start - e.residues[residues[0]].num.Num
	for i, rs := range residues {
		n := &e.residues[rs]
		if keepSpacing {
			n.num.Num += offset
		} else {
			n.num = Num(start + i)
		}
	}
	e.recomputeSequence(slot)
}

// ReorderResidues sorts a chain's residues by number. Residues with equal
// numbers keep their relative order.
func (e *Entity) ReorderResidues(c ChainHandle) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := e.owns(c.ent, "chain"); err != nil {
		return err
	}
	e.reorder(c.slot)
	return nil
}

// ReorderAllResidues sorts the residues of every chain by number.
func (e *Entity) ReorderAllResidues() {
	for _, cs := range e.chainList {
		e.reorder(cs)
	}
}

func (e *Entity) reorder(slot uint32) {
	residues := e.chains[slot].residues
	sort.SliceStable(residues, func(i, j int) bool {
		return e.residues[residues[i]].num.Less(e.residues[residues[j]].num)
	})
	e.recomputeSequence(slot)
}
