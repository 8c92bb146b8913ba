package mol

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/metrics"
)

// Internal coordinates hang off the directionality forest. Each tree bond
// parent->child stores the child's position in the parent's local frame as
// (length, theta, phi). Roots keep their Cartesian position and the identity
// frame; a child's frame is the parent frame rotated by Rz(phi)*Ry(theta), so
// its z axis points along the bond it was reached through. Internal
// coordinates are always relative to original (untransformed) positions.

type frameItem struct {
	slot  uint32
	frame *r3.Mat
}

// EnableICS switches internal coordinates on. The first call traces the bond
// graph and derives internal coordinates from the current positions.
func (e *Entity) EnableICS() error {
	e.dirty.enableICS()
	return e.UpdateICS()
}

// ICSEnabled reports whether internal coordinates are maintained.
func (e *Entity) ICSEnabled() bool { return !e.dirty.icsDisabled }

// UpdateICS brings internal coordinates up to date with the positions. It is
// a no-op while internal coordinates are disabled.
func (e *Entity) UpdateICS() error {
	if !e.dirty.needsICS() {
		return nil
	}
	if e.dirty.xcs {
		// Unflushed internal edits win over the stale positions.
		e.updateFromICS()
	}
	if err := e.ensureTraceErr(); err != nil {
		return err
	}
	e.updateFromXCS()
	return nil
}

// UpdateXCS brings positions up to date with pending internal coordinate
// edits.
func (e *Entity) UpdateXCS() {
	if e.dirty.xcs {
		e.updateFromICS()
	}
}

// updateFromXCS derives every tree bond's internal coordinates from the
// current positions.
func (e *Entity) updateFromXCS() {
	metrics.CoordinateSyncsTotal.WithLabelValues("xcs_to_ics").Inc()
	var stack []frameItem
	for _, root := range e.fragments {
		if !e.atoms[root].alive {
			continue
		}
		stack = append(stack[:0], frameItem{slot: root, frame: geom.Identity()})
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p := e.atoms[it.slot].pos
			for _, bs := range e.atoms[it.slot].secondary {
				if !e.isTreeBond(bs) {
					continue
				}
				b := &e.bonds[bs]
				local := it.frame.MulVecTrans(r3.Sub(e.atoms[b.second].pos, p))
				b.length, b.theta, b.phi = geom.ToSpherical(local)
				stack = append(stack, frameItem{slot: b.second, frame: geom.ChildFrame(it.frame, b.theta, b.phi)})
			}
		}
	}
	e.dirty.icsSynced()
}

// updateFromICS regenerates every non-root position from the internal
// coordinates.
func (e *Entity) updateFromICS() {
	metrics.CoordinateSyncsTotal.WithLabelValues("ics_to_xcs").Inc()
	var stack []frameItem
	for _, root := range e.fragments {
		if !e.atoms[root].alive {
			continue
		}
		stack = append(stack[:0], frameItem{slot: root, frame: geom.Identity()})
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p := e.atoms[it.slot].pos
			for _, bs := range e.atoms[it.slot].secondary {
				if !e.isTreeBond(bs) {
					continue
				}
				b := &e.bonds[bs]
				child := &e.atoms[b.second]
				child.pos = r3.Add(p, it.frame.MulVec(geom.SphericalDir(b.length, b.theta, b.phi)))
				child.tpos = e.transform.Apply(child.pos)
				stack = append(stack, frameItem{slot: b.second, frame: geom.ChildFrame(it.frame, b.theta, b.phi)})
			}
		}
	}
	e.dirty.xcsSynced()
}

func (e *Entity) isTreeBond(bs uint32) bool {
	b := &e.bonds[bs]
	return b.alive && !b.closure && e.atoms[b.second].primary == bs
}

// prepareICS makes the trace and internal coordinates current before an
// internal coordinate edit.
func (e *Entity) prepareICS() error {
	e.dirty.enableICS()
	if e.dirty.trace || e.dirty.ics {
		return e.UpdateICS()
	}
	return nil
}

func (e *Entity) setBondLength(bs uint32, length float64) error {
	if err := e.prepareICS(); err != nil {
		return err
	}
	if !e.isTreeBond(bs) {
		return integrityf("bond %s closes a ring and has no internal coordinates", e.bondHandle(bs))
	}
	e.bonds[bs].length = length
	e.dirty.markICSEdited()
	return nil
}

// setAngle sets the bond angle a1-a2-a3 in radians.
func (e *Entity) setAngle(a1, a2, a3 uint32, angle float64) error {
	if err := e.prepareICS(); err != nil {
		return err
	}
	b1, b3 := e.findBond(a1, a2), e.findBond(a2, a3)
	if b1 == noSlot {
		return &NotConnectedError{A: e.atomHandle(a1), B: e.atomHandle(a2)}
	}
	if b3 == noSlot {
		return &NotConnectedError{A: e.atomHandle(a2), B: e.atomHandle(a3)}
	}
	for _, bs := range [2]uint32{b1, b3} {
		if !e.isTreeBond(bs) {
			return integrityf("bond %s closes a ring and has no internal coordinates", e.bondHandle(bs))
		}
	}
	primary := e.atoms[a2].primary
	switch {
	case primary == b1:
		// a1 is the parent: the angle to a child is pi - theta.
		e.bonds[b3].theta = math.Pi - angle
	case primary == b3:
		e.bonds[b1].theta = math.Pi - angle
	default:
		// Both are children of a2: turn a3 within the plane spanned by the
		// two bond directions.
		d1 := geom.SphericalDir(1, e.bonds[b1].theta, e.bonds[b1].phi)
		b := &e.bonds[b3]
		d3 := geom.SphericalDir(1, b.theta, b.phi)
		axis := r3.Cross(d1, d3)
		if r3.Norm(axis) < geom.Epsilon {
			axis = geom.Perpendicular(d1)
		}
		_, b.theta, b.phi = geom.ToSpherical(r3.Rotate(d1, angle, axis))
	}
	e.dirty.markICSEdited()
	return nil
}

// rotateTorsion adds delta to the torsion around the central bond a2-a3.
// With updateOthers every branch leaving the child end of the bond turns;
// otherwise only the branch holding the outer atom.
func (e *Entity) rotateTorsion(atoms [4]uint32, delta float64, updateOthers bool) error {
	if err := e.prepareICS(); err != nil {
		return err
	}
	central := e.findBond(atoms[1], atoms[2])
	if central == noSlot {
		return &NotConnectedError{A: e.atomHandle(atoms[1]), B: e.atomHandle(atoms[2])}
	}
	if !e.isTreeBond(central) {
		return integrityf("bond %s closes a ring and cannot carry a torsion", e.bondHandle(central))
	}
	child, outer := atoms[2], atoms[3]
	if e.bonds[central].first != atoms[1] {
		// The tree runs a3->a2; the same dihedral read backwards.
		child, outer = atoms[1], atoms[0]
	}
	if updateOthers {
		for _, bs := range e.atoms[child].secondary {
			if e.isTreeBond(bs) && e.bonds[bs].first == child {
				e.bonds[bs].phi += delta
			}
		}
	} else {
		branch := e.findBond(child, outer)
		if branch == noSlot {
			return &NotConnectedError{A: e.atomHandle(child), B: e.atomHandle(outer)}
		}
		if !e.isTreeBond(branch) || e.bonds[branch].first != child {
			return integrityf("bond %s is not a branch of %s", e.bondHandle(branch), e.atomHandle(child))
		}
		e.bonds[branch].phi += delta
	}
	e.dirty.markICSEdited()
	return nil
}

func (e *Entity) setDihedral(atoms [4]uint32, angle float64, updateOthers bool) error {
	if err := e.prepareICS(); err != nil {
		return err
	}
	e.UpdateXCS()
	current := e.dihedral(atoms)
	return e.rotateTorsion(atoms, geom.NormalizeAngle(angle-current), updateOthers)
}

// Angle returns the bond angle a1-a2-a3 in radians from the current
// positions. The atoms need not be bonded.
func (e *Entity) Angle(a1, a2, a3 AtomHandle) (float64, error) {
	for _, a := range [3]AtomHandle{a1, a2, a3} {
		if err := a.check(); err != nil {
			return 0, err
		}
		if err := e.owns(a.ent, "atom"); err != nil {
			return 0, err
		}
	}
	e.UpdateXCS()
	return geom.Angle(e.atoms[a1.slot].pos, e.atoms[a2.slot].pos, e.atoms[a3.slot].pos), nil
}

// DihedralAngle returns the dihedral a1-a2-a3-a4 in radians from the current
// positions.
func (e *Entity) DihedralAngle(a1, a2, a3, a4 AtomHandle) (float64, error) {
	var slots [4]uint32
	for i, a := range [4]AtomHandle{a1, a2, a3, a4} {
		if err := a.check(); err != nil {
			return 0, err
		}
		if err := e.owns(a.ent, "atom"); err != nil {
			return 0, err
		}
		slots[i] = a.slot
	}
	e.UpdateXCS()
	return e.dihedral(slots), nil
}

// TorsionAngle returns the current angle of a torsion in radians.
func (e *Entity) TorsionAngle(t TorsionHandle) (float64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	if err := e.owns(t.ent, "torsion"); err != nil {
		return 0, err
	}
	return t.Angle(), nil
}
