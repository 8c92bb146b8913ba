package engine

import (
	"fmt"
	"time"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol"
	"github.com/sanonone/molgraph/pkg/query"
	"github.com/sanonone/molgraph/pkg/view"
)

// AtomRecord is a copy of an atom's data that stays valid outside the
// entity lock.
type AtomRecord struct {
	Index   uint32     `yaml:"index"`
	Chain   string     `yaml:"chain"`
	Residue string     `yaml:"residue"`
	Number  mol.ResNum `yaml:"number"`
	Name    string     `yaml:"name"`
	Element string     `yaml:"element"`
	Pos     geom.Vec   `yaml:"pos"`
}

// QualifiedName formats the record like mol.AtomHandle.QualifiedName.
func (r AtomRecord) QualifiedName() string {
	return fmt.Sprintf("%s.%s%s.%s", r.Chain, r.Residue, r.Number, r.Name)
}

func record(a mol.AtomHandle) AtomRecord {
	res := a.Residue()
	return AtomRecord{
		Index:   a.Index(),
		Chain:   res.Chain().Name(),
		Residue: res.Key(),
		Number:  res.Number(),
		Name:    a.Name(),
		Element: a.Element(),
		Pos:     a.Pos(),
	}
}

// Summary describes the size and state of an entity.
type Summary struct {
	Name      string         `yaml:"name"`
	ID        string         `yaml:"id"`
	Chains    int            `yaml:"chains"`
	Residues  int            `yaml:"residues"`
	Atoms     int            `yaml:"atoms"`
	Bonds     int            `yaml:"bonds"`
	Torsions  int            `yaml:"torsions"`
	Fragments int            `yaml:"fragments"`
	ICS       bool           `yaml:"ics"`
	Dirty     mol.DirtyState `yaml:"dirty"`
}

// Info summarizes the named entity.
func (e *Engine) Info(name string) (Summary, error) {
	var s Summary
	err := e.WithEntity(name, func(ent *mol.Entity) error {
		frags, err := ent.Fragments()
		if err != nil {
			return err
		}
		s = Summary{
			Name:      ent.Name(),
			ID:        ent.ID().String(),
			Chains:    ent.ChainCount(),
			Residues:  ent.ResidueCount(),
			Atoms:     ent.AtomCount(),
			Bonds:     ent.BondCount(),
			Torsions:  ent.TorsionCount(),
			Fragments: len(frags),
			ICS:       ent.ICSEnabled(),
			Dirty:     ent.Dirty(),
		}
		return nil
	})
	return s, err
}

// Select runs a query against the named entity and returns the matching
// atoms.
func (e *Engine) Select(name, q string, flags view.Flags) ([]AtomRecord, error) {
	compiled := query.New(q)
	if err := compiled.Err(); err != nil {
		return nil, err
	}
	var out []AtomRecord
	err := e.WithEntity(name, func(ent *mol.Entity) error {
		start := time.Now()
		v, err := view.Select(ent, compiled, flags|view.NoBonds)
		if err != nil {
			return err
		}
		out = make([]AtomRecord, 0, v.AtomCount())
		for _, a := range v.AtomHandles() {
			out = append(out, record(a))
		}
		e.log.Debug("[Engine] select", "entity", name, "query", q, "atoms", len(out), "took", time.Since(start))
		return nil
	})
	return out, err
}

// FindWithin returns the atoms of the named entity within radius of point.
func (e *Engine) FindWithin(name string, point geom.Vec, radius float64) ([]AtomRecord, error) {
	var out []AtomRecord
	err := e.WithEntity(name, func(ent *mol.Entity) error {
		for _, a := range ent.FindWithin(point, radius) {
			out = append(out, record(a))
		}
		return nil
	})
	return out, err
}

// FragmentRoots returns the root atom of every fragment of the bond graph.
func (e *Engine) FragmentRoots(name string) ([]AtomRecord, error) {
	var out []AtomRecord
	err := e.WithEntity(name, func(ent *mol.Entity) error {
		roots, err := ent.Fragments()
		if err != nil {
			return err
		}
		for _, a := range roots {
			out = append(out, record(a))
		}
		return nil
	})
	return out, err
}

// TorsionRecord is a copy of a named torsion and its current angle.
type TorsionRecord struct {
	Residue string  `yaml:"residue"`
	Name    string  `yaml:"name"`
	Degrees float64 `yaml:"degrees"`
}

// Torsions lists the torsions of the named entity with their angles.
func (e *Engine) Torsions(name string) ([]TorsionRecord, error) {
	var out []TorsionRecord
	err := e.WithEntity(name, func(ent *mol.Entity) error {
		for _, t := range ent.Torsions() {
			out = append(out, TorsionRecord{
				Residue: t.Residue().QualifiedName(),
				Name:    t.Name(),
				Degrees: geom.Deg(t.Angle()),
			})
		}
		return nil
	})
	return out, err
}
