package mol

import (
	"sort"

	"github.com/sanonone/molgraph/pkg/geom"
)

type bondNode struct {
	slotHeader
	first  uint32
	second uint32
	order  int

	// Internal coordinates of second relative to the local frame of first.
	length float64
	theta  float64
	phi    float64

	// closure marks a bond that closes a ring; it is not part of the
	// directionality tree and internal coordinate propagation skips it.
	closure bool
}

func (b *bondNode) other(slot uint32) uint32 {
	if b.first == slot {
		return b.second
	}
	return b.first
}

func (b *bondNode) reverse() {
	b.first, b.second = b.second, b.first
}

// Connect bonds two atoms. If they are already bonded the existing bond is
// returned unchanged, so the call is idempotent. The initial bond length is
// taken from the current positions.
func (e *Entity) Connect(a, b AtomHandle, order int) (BondHandle, error) {
	if err := e.checkPair(a, b); err != nil {
		return BondHandle{}, err
	}
	if bs := e.findBond(a.slot, b.slot); bs != noSlot {
		return e.bondHandle(bs), nil
	}
	length := geom.Distance(e.atoms[a.slot].pos, e.atoms[b.slot].pos)
	return e.connect(a.slot, b.slot, length, 0, 0, order), nil
}

// ConnectWithICS bonds two atoms and seeds the bond's internal coordinates:
// the position of b relative to the local frame of a. The seed is replaced
// the next time internal coordinates are derived from positions.
func (e *Entity) ConnectWithICS(a, b AtomHandle, length, theta, phi float64, order int) (BondHandle, error) {
	if err := e.checkPair(a, b); err != nil {
		return BondHandle{}, err
	}
	if bs := e.findBond(a.slot, b.slot); bs != noSlot {
		return e.bondHandle(bs), nil
	}
	return e.connect(a.slot, b.slot, length, theta, phi, order), nil
}

func (e *Entity) checkPair(a, b AtomHandle) error {
	if err := a.check(); err != nil {
		return err
	}
	if err := b.check(); err != nil {
		return err
	}
	if err := e.owns(a.ent, "atom"); err != nil {
		return err
	}
	if err := e.owns(b.ent, "atom"); err != nil {
		return err
	}
	if a.slot == b.slot {
		return integrityf("cannot bond atom %s to itself", a.QualifiedName())
	}
	return nil
}

func (e *Entity) connect(a, b uint32, length, theta, phi float64, order int) BondHandle {
	slot := allocSlot(&e.bonds, &e.freeBonds, bondNode{
		first:  a,
		second: b,
		order:  order,
		length: length,
		theta:  theta,
		phi:    phi,
	})
	e.atoms[a].secondary = insertSorted(e.atoms[a].secondary, slot)
	e.atoms[b].secondary = insertSorted(e.atoms[b].secondary, slot)
	e.bondCount++
	e.dirty.markTopologyChanged()
	e.dirty.organizer = true
	e.notifyTopology()
	return e.bondHandle(slot)
}

// findBond returns the bond slot between two atoms, or noSlot. Primary
// bonds are checked first, then the shorter of the two secondary lists.
func (e *Entity) findBond(a, b uint32) uint32 {
	na, nb := &e.atoms[a], &e.atoms[b]
	if na.primary != noSlot && e.bonds[na.primary].other(a) == b {
		return na.primary
	}
	if nb.primary != noSlot && e.bonds[nb.primary].other(b) == a {
		return nb.primary
	}
	from, to := a, b
	if len(nb.secondary) < len(na.secondary) {
		from, to = b, a
	}
	for _, bs := range e.atoms[from].secondary {
		if e.bonds[bs].other(from) == to {
			return bs
		}
	}
	return noSlot
}

// FindBond returns the bond between a and b.
func (e *Entity) FindBond(a, b AtomHandle) (BondHandle, bool) {
	if e.checkPair(a, b) != nil {
		return BondHandle{}, false
	}
	bs := e.findBond(a.slot, b.slot)
	if bs == noSlot {
		return BondHandle{}, false
	}
	return e.bondHandle(bs), true
}

// DeleteBond removes a bond.
func (e *Entity) DeleteBond(b BondHandle) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := e.owns(b.ent, "bond"); err != nil {
		return err
	}
	e.deleteBond(b.slot)
	e.notifyTopology()
	return nil
}

func (e *Entity) deleteBond(slot uint32) {
	bn := e.bonds[slot]
	for _, as := range [2]uint32{bn.first, bn.second} {
		n := &e.atoms[as]
		if n.primary == slot {
			n.primary = noSlot
		} else {
			n.secondary = removeSlot(n.secondary, slot)
		}
	}
	freeSlot(&e.bonds, &e.freeBonds, slot)
	e.bondCount--
	e.dirty.markTopologyChanged()
}

func insertSorted(list []uint32, v uint32) []uint32 {
	i := sort.Search(len(list), func(i int) bool { return list[i] >= v })
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

// First returns the bond's first endpoint. After tracing this is the atom
// closer to the fragment root.
func (b BondHandle) First() AtomHandle { return b.ent.atomHandle(b.node().first) }

// Second returns the bond's second endpoint.
func (b BondHandle) Second() AtomHandle { return b.ent.atomHandle(b.node().second) }

// Other returns the endpoint that is not a.
func (b BondHandle) Other(a AtomHandle) AtomHandle {
	return b.ent.atomHandle(b.node().other(a.slot))
}

// Order returns the bond order.
func (b BondHandle) Order() int { return b.node().order }

// SetOrder sets the bond order.
func (b BondHandle) SetOrder(order int) { b.node().order = order }

// IsClosure reports whether the bond closes a ring in the directionality
// tree.
func (b BondHandle) IsClosure() bool {
	b.node()
	b.ent.ensureTrace("IsClosure")
	return b.node().closure
}

// Length returns the bond length. While internal coordinate edits are
// pending it reports the edited length, otherwise the distance between the
// endpoints.
func (b BondHandle) Length() float64 {
	n := b.node()
	if b.ent.dirty.xcs && !n.closure {
		return n.length
	}
	return geom.Distance(b.ent.atoms[n.first].pos, b.ent.atoms[n.second].pos)
}

// InternalCoords returns the bond's stored length, polar angle and azimuth.
func (b BondHandle) InternalCoords() (length, theta, phi float64) {
	n := b.node()
	return n.length, n.theta, n.phi
}

// Contains reports whether a is one of the bond's endpoints.
func (b BondHandle) Contains(a AtomHandle) bool {
	n := b.node()
	return a.ent == b.ent && (a.slot == n.first || a.slot == n.second)
}
