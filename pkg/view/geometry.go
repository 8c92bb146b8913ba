package view

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol"
)

// FindWithin returns the atoms of the view within radius of point. It scans
// the view; use mol.Entity.FindWithin for whole-entity lookups.
func (v *EntityView) FindWithin(point geom.Vec, radius float64) []*AtomView {
	r2 := radius * radius
	var out []*AtomView
	for _, av := range v.Atoms() {
		if geom.Distance2(av.handle.Pos(), point) <= r2 {
			out = append(out, av)
		}
	}
	return out
}

func (v *EntityView) positions() []geom.Vec {
	out := make([]geom.Vec, 0, v.natoms)
	for _, av := range v.Atoms() {
		out = append(out, av.handle.Pos())
	}
	return out
}

// Bounds returns the axis-aligned box around the view's atoms.
func (v *EntityView) Bounds() r3.Box { return geom.Bounds(v.positions()) }

// Center returns the centroid of the view's atoms.
func (v *EntityView) Center() geom.Vec { return geom.Centroid(v.positions()) }

// Mass returns the summed atom masses.
func (v *EntityView) Mass() float64 {
	var m float64
	for _, av := range v.Atoms() {
		m += av.handle.Mass()
	}
	return m
}

// CenterOfMass returns the mass-weighted centroid of the view's atoms.
func (v *EntityView) CenterOfMass() geom.Vec {
	atoms := v.Atoms()
	pts := make([]geom.Vec, len(atoms))
	w := make([]float64, len(atoms))
	for i, av := range atoms {
		pts[i] = av.handle.Pos()
		w[i] = av.handle.Mass()
	}
	return geom.WeightedCentroid(pts, w)
}

// Apply walks the view with vis in the same order as mol.Entity.Apply, but
// only over the nodes of the view.
func (v *EntityView) Apply(vis mol.Visitor) {
	for _, cv := range v.chains {
		switch vis.VisitChain(cv.handle) {
		case mol.Stop:
			return
		case mol.SkipChildren:
			continue
		}
		for _, rv := range cv.residues {
			switch vis.VisitResidue(rv.handle) {
			case mol.Stop:
				return
			case mol.SkipChildren:
				continue
			}
			for _, av := range rv.atoms {
				if vis.VisitAtom(av.handle) == mol.Stop {
					return
				}
			}
		}
	}
	for _, bv := range v.bonds {
		if vis.VisitBond(bv.handle) == mol.Stop {
			return
		}
	}
}
