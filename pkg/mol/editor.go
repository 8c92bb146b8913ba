package mol

import (
	"github.com/sanonone/molgraph/pkg/geom"
)

// EditMode selects when an editor propagates its changes to the other
// coordinate system.
type EditMode int

const (
	// Buffered defers propagation until the last editor of its kind closes.
	Buffered EditMode = iota
	// Unbuffered propagates after every single operation.
	Unbuffered
)

func (m EditMode) String() string {
	if m == Unbuffered {
		return "unbuffered"
	}
	return "buffered"
}

// XCSEditor edits Cartesian positions. Editors nest: the entity counts open
// editors and only the outermost Close triggers propagation into internal
// coordinates. Use it with defer:
//
//	ed := ent.EditXCS(mol.Buffered)
//	defer ed.Close()
type XCSEditor struct {
	ent    *Entity
	mode   EditMode
	closed bool
}

// EditXCS opens a Cartesian coordinate editor. Pending internal coordinate
// edits are applied to the positions first.
func (e *Entity) EditXCS(mode EditMode) *XCSEditor {
	e.UpdateXCS()
	e.xcsEditors++
	return &XCSEditor{ent: e, mode: mode}
}

// Mode returns the editor's propagation mode.
func (ed *XCSEditor) Mode() EditMode { return ed.mode }

// Close releases the editor. Closing twice is a no-op.
func (ed *XCSEditor) Close() error {
	if ed.closed {
		return nil
	}
	ed.closed = true
	ed.ent.xcsEditors--
	if ed.ent.xcsEditors == 0 {
		return ed.ent.UpdateICS()
	}
	return nil
}

func (ed *XCSEditor) edited() error {
	ed.ent.dirty.markXCSEdited()
	if ed.mode == Unbuffered {
		return ed.ent.UpdateICS()
	}
	return nil
}

func (ed *XCSEditor) atom(a AtomHandle) (*atomNode, error) {
	if ed.closed {
		return nil, integrityf("editor is closed")
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	if err := ed.ent.owns(a.ent, "atom"); err != nil {
		return nil, err
	}
	return &ed.ent.atoms[a.slot], nil
}

// SetAtomPos sets an atom's original position; the transformed position
// follows from the entity transform.
func (ed *XCSEditor) SetAtomPos(a AtomHandle, pos geom.Vec) error {
	n, err := ed.atom(a)
	if err != nil {
		return err
	}
	n.pos = pos
	n.tpos = ed.ent.transform.Apply(pos)
	return ed.edited()
}

// SetAtomTransformedPos sets an atom's transformed position; the original
// position is recovered through the inverse transform.
func (ed *XCSEditor) SetAtomTransformedPos(a AtomHandle, pos geom.Vec) error {
	n, err := ed.atom(a)
	if err != nil {
		return err
	}
	n.tpos = pos
	n.pos = ed.ent.transform.Invert(pos)
	return ed.edited()
}

// SetTransform replaces the entity transform. Original positions and
// internal coordinates are unchanged.
func (ed *XCSEditor) SetTransform(t geom.Transform) error {
	if ed.closed {
		return integrityf("editor is closed")
	}
	ed.ent.setTransform(t)
	return nil
}

// ApplyTransform composes t after the current entity transform.
func (ed *XCSEditor) ApplyTransform(t geom.Transform) error {
	if ed.closed {
		return integrityf("editor is closed")
	}
	ed.ent.setTransform(ed.ent.transform.Then(t))
	return nil
}

// FixTransform bakes the entity transform into the original positions and
// resets it to the identity.
func (ed *XCSEditor) FixTransform() error {
	if ed.closed {
		return integrityf("editor is closed")
	}
	e := ed.ent
	if e.transform.IsIdentity() {
		return nil
	}
	for i := range e.atoms {
		if e.atoms[i].alive {
			e.atoms[i].pos = e.atoms[i].tpos
		}
	}
	e.transform = geom.IdentityTransform()
	return ed.edited()
}

func (e *Entity) setTransform(t geom.Transform) {
	if t.Rot == nil {
		t.Rot = geom.Identity()
	}
	e.transform = t
	for i := range e.atoms {
		if e.atoms[i].alive {
			e.atoms[i].tpos = t.Apply(e.atoms[i].pos)
		}
	}
	e.dirty.organizer = true
}

// Transform returns the entity transform.
func (e *Entity) Transform() geom.Transform { return e.transform }

// ICSEditor edits internal coordinates: bond lengths, angles and torsions.
// Opening one enables internal coordinates on the entity. As with
// XCSEditor, only the outermost Close regenerates positions.
type ICSEditor struct {
	ent    *Entity
	mode   EditMode
	closed bool
}

// EditICS opens an internal coordinate editor. Pending position edits are
// folded into the internal coordinates first.
func (e *Entity) EditICS(mode EditMode) (*ICSEditor, error) {
	e.dirty.enableICS()
	if err := e.UpdateICS(); err != nil {
		return nil, err
	}
	e.icsEditors++
	return &ICSEditor{ent: e, mode: mode}, nil
}

// Mode returns the editor's propagation mode.
func (ed *ICSEditor) Mode() EditMode { return ed.mode }

// Close releases the editor. Closing twice is a no-op.
func (ed *ICSEditor) Close() error {
	if ed.closed {
		return nil
	}
	ed.closed = true
	ed.ent.icsEditors--
	if ed.ent.icsEditors == 0 {
		ed.ent.UpdateXCS()
	}
	return nil
}

func (ed *ICSEditor) done(err error) error {
	if err != nil {
		return err
	}
	if ed.mode == Unbuffered {
		ed.ent.UpdateXCS()
	}
	return nil
}

func (ed *ICSEditor) atoms(handles ...AtomHandle) ([4]uint32, error) {
	var slots [4]uint32
	if ed.closed {
		return slots, integrityf("editor is closed")
	}
	for i, a := range handles {
		if err := a.check(); err != nil {
			return slots, err
		}
		if err := ed.ent.owns(a.ent, "atom"); err != nil {
			return slots, err
		}
		slots[i] = a.slot
	}
	return slots, nil
}

// SetBondLength sets the length of a bond.
func (ed *ICSEditor) SetBondLength(b BondHandle, length float64) error {
	if ed.closed {
		return integrityf("editor is closed")
	}
	if err := b.check(); err != nil {
		return err
	}
	if err := ed.ent.owns(b.ent, "bond"); err != nil {
		return err
	}
	return ed.done(ed.ent.setBondLength(b.slot, length))
}

// SetAngle sets the angle a1-a2-a3 in radians. Both a1 and a3 must be bonded
// to a2, otherwise NotConnectedError is returned.
func (ed *ICSEditor) SetAngle(a1, a2, a3 AtomHandle, angle float64) error {
	s, err := ed.atoms(a1, a2, a3)
	if err != nil {
		return err
	}
	return ed.done(ed.ent.setAngle(s[0], s[1], s[2], angle))
}

// SetTorsionAngle sets a torsion to angle radians by rotating around its
// central bond. With updateOthers every substituent at the far end of the
// bond turns along; otherwise only the torsion's own outer atom branch.
func (ed *ICSEditor) SetTorsionAngle(t TorsionHandle, angle float64, updateOthers bool) error {
	if ed.closed {
		return integrityf("editor is closed")
	}
	if err := t.check(); err != nil {
		return err
	}
	if err := ed.ent.owns(t.ent, "torsion"); err != nil {
		return err
	}
	return ed.done(ed.ent.setDihedral(ed.ent.torsions[t.slot].atoms, angle, updateOthers))
}

// RotateTorsionAngle turns a torsion by delta radians.
func (ed *ICSEditor) RotateTorsionAngle(t TorsionHandle, delta float64, updateOthers bool) error {
	if ed.closed {
		return integrityf("editor is closed")
	}
	if err := t.check(); err != nil {
		return err
	}
	if err := ed.ent.owns(t.ent, "torsion"); err != nil {
		return err
	}
	return ed.done(ed.ent.rotateTorsion(ed.ent.torsions[t.slot].atoms, delta, updateOthers))
}

// SetDihedralAngle sets the dihedral a1-a2-a3-a4 without a registered
// torsion.
func (ed *ICSEditor) SetDihedralAngle(a1, a2, a3, a4 AtomHandle, angle float64, updateOthers bool) error {
	s, err := ed.atoms(a1, a2, a3, a4)
	if err != nil {
		return err
	}
	return ed.done(ed.ent.setDihedral(s, angle, updateOthers))
}
