package mol

import "fmt"

// Handles are small values pointing into the arenas of an Entity. A handle
// stays valid until the node it refers to is deleted; afterwards every
// accessor reports InvalidHandleError. Handles are comparable and can be
// used as map keys.

const noSlot = ^uint32(0)

// AtomHandle refers to an atom of an entity.
type AtomHandle struct {
	ent  *Entity
	slot uint32
	gen  uint32
}

// ResidueHandle refers to a residue of an entity.
type ResidueHandle struct {
	ent  *Entity
	slot uint32
	gen  uint32
}

// ChainHandle refers to a chain of an entity.
type ChainHandle struct {
	ent  *Entity
	slot uint32
	gen  uint32
}

// BondHandle refers to a connector between two atoms.
type BondHandle struct {
	ent  *Entity
	slot uint32
	gen  uint32
}

// TorsionHandle refers to a named torsion over four atoms.
type TorsionHandle struct {
	ent  *Entity
	slot uint32
	gen  uint32
}

func (a AtomHandle) IsValid() bool {
	if a.ent == nil || a.gen == 0 || int(a.slot) >= len(a.ent.atoms) {
		return false
	}
	n := &a.ent.atoms[a.slot]
	return n.alive && n.gen == a.gen
}

func (r ResidueHandle) IsValid() bool {
	if r.ent == nil || r.gen == 0 || int(r.slot) >= len(r.ent.residues) {
		return false
	}
	n := &r.ent.residues[r.slot]
	return n.alive && n.gen == r.gen
}

func (c ChainHandle) IsValid() bool {
	if c.ent == nil || c.gen == 0 || int(c.slot) >= len(c.ent.chains) {
		return false
	}
	n := &c.ent.chains[c.slot]
	return n.alive && n.gen == c.gen
}

func (b BondHandle) IsValid() bool {
	if b.ent == nil || b.gen == 0 || int(b.slot) >= len(b.ent.bonds) {
		return false
	}
	n := &b.ent.bonds[b.slot]
	return n.alive && n.gen == b.gen
}

func (t TorsionHandle) IsValid() bool {
	if t.ent == nil || t.gen == 0 || int(t.slot) >= len(t.ent.torsions) {
		return false
	}
	n := &t.ent.torsions[t.slot]
	return n.alive && n.gen == t.gen
}

func (a AtomHandle) check() error {
	if !a.IsValid() {
		return &InvalidHandleError{Kind: "atom"}
	}
	return nil
}

func (r ResidueHandle) check() error {
	if !r.IsValid() {
		return &InvalidHandleError{Kind: "residue"}
	}
	return nil
}

func (c ChainHandle) check() error {
	if !c.IsValid() {
		return &InvalidHandleError{Kind: "chain"}
	}
	return nil
}

func (b BondHandle) check() error {
	if !b.IsValid() {
		return &InvalidHandleError{Kind: "bond"}
	}
	return nil
}

func (t TorsionHandle) check() error {
	if !t.IsValid() {
		return &InvalidHandleError{Kind: "torsion"}
	}
	return nil
}

// node accessors panic on stale handles: a getter without an error return
// has no other way to report misuse.

func (a AtomHandle) node() *atomNode {
	if err := a.check(); err != nil {
		panic(err)
	}
	return &a.ent.atoms[a.slot]
}

func (r ResidueHandle) node() *residueNode {
	if err := r.check(); err != nil {
		panic(err)
	}
	return &r.ent.residues[r.slot]
}

func (c ChainHandle) node() *chainNode {
	if err := c.check(); err != nil {
		panic(err)
	}
	return &c.ent.chains[c.slot]
}

func (b BondHandle) node() *bondNode {
	if err := b.check(); err != nil {
		panic(err)
	}
	return &b.ent.bonds[b.slot]
}

func (t TorsionHandle) node() *torsionNode {
	if err := t.check(); err != nil {
		panic(err)
	}
	return &t.ent.torsions[t.slot]
}

// Entity returns the entity the handle belongs to, or nil for a zero handle.
func (a AtomHandle) Entity() *Entity    { return a.ent }
func (r ResidueHandle) Entity() *Entity { return r.ent }
func (c ChainHandle) Entity() *Entity   { return c.ent }
func (b BondHandle) Entity() *Entity    { return b.ent }
func (t TorsionHandle) Entity() *Entity { return t.ent }

func (a AtomHandle) String() string    { return a.safeName() }
func (r ResidueHandle) String() string { return r.safeName() }
func (c ChainHandle) String() string   { return c.safeName() }

func (b BondHandle) String() string {
	if !b.IsValid() {
		return "<invalid bond>"
	}
	n := b.node()
	return fmt.Sprintf("%s-%s", b.ent.atomHandle(n.first).safeName(), b.ent.atomHandle(n.second).safeName())
}

func (t TorsionHandle) String() string {
	if !t.IsValid() {
		return "<invalid torsion>"
	}
	return t.node().name
}

func (a AtomHandle) safeName() string {
	if !a.IsValid() {
		return "<invalid atom>"
	}
	return a.QualifiedName()
}

func (r ResidueHandle) safeName() string {
	if !r.IsValid() {
		return "<invalid residue>"
	}
	return r.QualifiedName()
}

func (c ChainHandle) safeName() string {
	if !c.IsValid() {
		return "<invalid chain>"
	}
	return c.Name()
}

func (e *Entity) atomHandle(slot uint32) AtomHandle {
	return AtomHandle{ent: e, slot: slot, gen: e.atoms[slot].gen}
}

func (e *Entity) residueHandle(slot uint32) ResidueHandle {
	return ResidueHandle{ent: e, slot: slot, gen: e.residues[slot].gen}
}

func (e *Entity) chainHandle(slot uint32) ChainHandle {
	return ChainHandle{ent: e, slot: slot, gen: e.chains[slot].gen}
}

func (e *Entity) bondHandle(slot uint32) BondHandle {
	return BondHandle{ent: e, slot: slot, gen: e.bonds[slot].gen}
}

func (e *Entity) torsionHandle(slot uint32) TorsionHandle {
	return TorsionHandle{ent: e, slot: slot, gen: e.torsions[slot].gen}
}

// owns reports an integrity error when a handle from another entity is used.
func (e *Entity) owns(other *Entity, what string) error {
	if other != e {
		return integrityf("%s belongs to a different entity", what)
	}
	return nil
}
