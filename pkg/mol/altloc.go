package mol

import "github.com/sanonone/molgraph/pkg/geom"

type altPos struct {
	pos  geom.Vec
	occ  float64
	bfac float64
}

// altGroups stores alternate locations of a residue's atoms. Exactly one
// group is active; its values are what the atoms currently carry.
type altGroups struct {
	names  []string
	active string
	groups map[string]map[uint32]altPos
}

func (g *altGroups) has(name string) bool {
	_, ok := g.groups[name]
	return ok
}

func (g *altGroups) add(name string) {
	if g.has(name) {
		return
	}
	g.names = append(g.names, name)
	g.groups[name] = make(map[uint32]altPos)
	if g.active == "" {
		g.active = name
	}
}

func (g *altGroups) forget(atom uint32) {
	for _, m := range g.groups {
		delete(m, atom)
	}
}

// InsertAltAtom adds an atom that has alternate locations. The atom is
// recorded under group; the first group of a residue becomes its active
// group.
func (e *Entity) InsertAltAtom(r ResidueHandle, name, group string, pos geom.Vec, element string, occupancy, bfactor float64, isHet bool) (AtomHandle, error) {
	if group == "" {
		return AtomHandle{}, integrityf("alternate location group name must not be empty")
	}
	a, err := e.InsertAtom(r, name, pos, element, occupancy, bfactor, isHet)
	if err != nil {
		return AtomHandle{}, err
	}
	rn := &e.residues[r.slot]
	if rn.alt == nil {
		rn.alt = &altGroups{groups: make(map[string]map[uint32]altPos)}
	}
	rn.alt.add(group)
	rn.alt.groups[group][a.slot] = altPos{pos: pos, occ: occupancy, bfac: bfactor}
	return a, nil
}

// AddAltAtomPos records another alternate location for an atom inserted
// with InsertAltAtom. If group is active the atom moves there right away.
func (e *Entity) AddAltAtomPos(group string, a AtomHandle, pos geom.Vec, occupancy, bfactor float64) error {
	if err := a.check(); err != nil {
		return err
	}
	if err := e.owns(a.ent, "atom"); err != nil {
		return err
	}
	rn := &e.residues[e.atoms[a.slot].residue]
	if rn.alt == nil || !rn.alt.hasAtom(a.slot) {
		return integrityf("atom %s has no alternate locations", a.QualifiedName())
	}
	rn.alt.add(group)
	rn.alt.groups[group][a.slot] = altPos{pos: pos, occ: occupancy, bfac: bfactor}
	if rn.alt.active == group {
		e.applyAltPos(a.slot, altPos{pos: pos, occ: occupancy, bfac: bfactor})
		e.dirty.markXCSEdited()
	}
	return nil
}

func (g *altGroups) hasAtom(atom uint32) bool {
	for _, m := range g.groups {
		if _, ok := m[atom]; ok {
			return true
		}
	}
	return false
}

// SwitchAltGroup makes group the active alternate location of a residue.
// The atoms' current values are saved back into the previously active group
// first, so switching back restores any edits.
func (e *Entity) SwitchAltGroup(r ResidueHandle, group string) error {
	if err := r.check(); err != nil {
		return err
	}
	if err := e.owns(r.ent, "residue"); err != nil {
		return err
	}
	alt := e.residues[r.slot].alt
	if alt == nil || !alt.has(group) {
		return integrityf("residue %s has no alternate location group %q", r.QualifiedName(), group)
	}
	if alt.active == group {
		return nil
	}
	e.UpdateXCS()
	for slot := range alt.groups[alt.active] {
		n := &e.atoms[slot]
		alt.groups[alt.active][slot] = altPos{pos: n.pos, occ: n.occ, bfac: n.bfac}
	}
	for slot, ap := range alt.groups[group] {
		e.applyAltPos(slot, ap)
	}
	alt.active = group
	e.dirty.markXCSEdited()
	return nil
}

func (e *Entity) applyAltPos(slot uint32, ap altPos) {
	n := &e.atoms[slot]
	n.pos = ap.pos
	n.tpos = e.transform.Apply(ap.pos)
	n.occ = ap.occ
	n.bfac = ap.bfac
}

// HasAltAtoms reports whether any atom of the residue has alternate
// locations.
func (r ResidueHandle) HasAltAtoms() bool {
	n := r.node()
	return n.alt != nil && len(n.alt.names) > 0
}

// AltGroupNames returns the residue's alternate location groups in the order
// they were first seen.
func (r ResidueHandle) AltGroupNames() []string {
	n := r.node()
	if n.alt == nil {
		return nil
	}
	return append([]string(nil), n.alt.names...)
}

// ActiveAltGroup returns the active alternate location group, or "" if the
// residue has none.
func (r ResidueHandle) ActiveAltGroup() string {
	n := r.node()
	if n.alt == nil {
		return ""
	}
	return n.alt.active
}

// HasAltGroup reports whether the residue has the named group.
func (r ResidueHandle) HasAltGroup(group string) bool {
	n := r.node()
	return n.alt != nil && n.alt.has(group)
}

// AltPos returns the position an atom has in an alternate location group.
func (a AtomHandle) AltPos(group string) (geom.Vec, bool) {
	n := a.node()
	alt := a.ent.residues[n.residue].alt
	if alt == nil {
		return geom.Vec{}, false
	}
	if group == alt.active {
		if _, ok := alt.groups[group][a.slot]; ok {
			return n.pos, true
		}
		return geom.Vec{}, false
	}
	ap, ok := alt.groups[group][a.slot]
	return ap.pos, ok
}
