package mol

import (
	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/metrics"
	"github.com/sanonone/molgraph/pkg/mol/spatial"
)

// The organizer indexes atoms by transformed position. Atom inserts and
// deletes update it in place; position, transform and bond changes mark it
// dirty and the next proximity query rebuilds it.

func (e *Entity) ensureOrganizer() {
	e.UpdateXCS()
	if !e.dirty.organizer {
		return
	}
	metrics.OrganizerRebuildsTotal.Inc()
	e.organizer.Clear()
	for i := range e.atoms {
		if e.atoms[i].alive {
			e.organizer.Add(uint32(i), e.atoms[i].tpos)
		}
	}
	e.dirty.organized()
}

// FindWithin returns every atom whose transformed position lies within
// radius of p, ordered by stable index.
func (e *Entity) FindWithin(p geom.Vec, radius float64) []AtomHandle {
	e.ensureOrganizer()
	slots := e.organizer.FindWithin(p, radius)
	out := make([]AtomHandle, len(slots))
	for i, s := range slots {
		out[i] = e.atomHandle(s)
	}
	sortAtomsByIndex(out)
	return out
}

// IsWithin reports whether any atom lies within radius of p.
func (e *Entity) IsWithin(p geom.Vec, radius float64) bool {
	e.ensureOrganizer()
	return e.organizer.AnyWithin(p, radius)
}

// AtomDistance pairs an atom with its distance to a query point.
type AtomDistance struct {
	Atom     AtomHandle
	Distance float64
}

// FindNearest returns up to k atoms closest to p, nearest first.
func (e *Entity) FindNearest(p geom.Vec, k int) []AtomDistance {
	e.ensureOrganizer()
	found := e.organizer.FindNearest(p, k)
	out := make([]AtomDistance, len(found))
	for i, n := range found {
		out[i] = AtomDistance{Atom: e.atomHandle(n.Key), Distance: n.Distance}
	}
	return out
}

// CellSize returns the spatial index cell size.
func (e *Entity) CellSize() float64 { return e.organizer.CellSize() }

// SetCellSize rebuilds the spatial index with a new cell size.
func (e *Entity) SetCellSize(size float64) {
	e.organizer = spatial.NewGrid[uint32](size)
	e.dirty.organizer = true
}

// Bounds returns the axis-aligned box around all transformed positions.
func (e *Entity) Bounds() geom.Box {
	pts := make([]geom.Vec, 0, e.atomCount)
	e.forEachAtomSlot(func(slot uint32) {
		pts = append(pts, e.atoms[slot].tpos)
	})
	return geom.Bounds(pts)
}

// Center returns the geometric center of all transformed positions.
func (e *Entity) Center() geom.Vec {
	pts := make([]geom.Vec, 0, e.atomCount)
	e.forEachAtomSlot(func(slot uint32) {
		pts = append(pts, e.atoms[slot].tpos)
	})
	return geom.Centroid(pts)
}

// CenterOfMass returns the mass-weighted center of all transformed positions.
func (e *Entity) CenterOfMass() geom.Vec {
	pts := make([]geom.Vec, 0, e.atomCount)
	w := make([]float64, 0, e.atomCount)
	e.forEachAtomSlot(func(slot uint32) {
		pts = append(pts, e.atoms[slot].tpos)
		w = append(w, e.atoms[slot].mass)
	})
	return geom.WeightedCentroid(pts, w)
}

// Mass returns the total mass of the entity.
func (e *Entity) Mass() float64 {
	total := 0.0
	e.forEachAtomSlot(func(slot uint32) {
		total += e.atoms[slot].mass
	})
	return total
}
