package engine

import (
	"fmt"
	"strings"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol"
)

// Geometry holds the ideal backbone values BuildBackbone applies. Lengths
// are in Å, angles and torsions in degrees.
type Geometry struct {
	NCA float64 `yaml:"n_ca"`
	CAC float64 `yaml:"ca_c"`
	CO  float64 `yaml:"c_o"`
	CN  float64 `yaml:"c_n"`

	NCAC float64 `yaml:"n_ca_c"`
	CACN float64 `yaml:"ca_c_n"`
	CNCA float64 `yaml:"c_n_ca"`
	CACO float64 `yaml:"ca_c_o"`

	Phi   float64 `yaml:"phi"`
	Psi   float64 `yaml:"psi"`
	Omega float64 `yaml:"omega"`
}

// DefaultGeometry returns an alpha helix with Engh & Huber bond geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		NCA: 1.458, CAC: 1.525, CO: 1.231, CN: 1.329,
		NCAC: 111.2, CACN: 116.2, CNCA: 121.7, CACO: 120.5,
		Phi: -57, Psi: -47, Omega: 180,
	}
}

// Validate rejects non-positive lengths and angles outside (0, 180).
func (g Geometry) Validate() error {
	for name, l := range map[string]float64{"n_ca": g.NCA, "ca_c": g.CAC, "c_o": g.CO, "c_n": g.CN} {
		if l <= 0 {
			return fmt.Errorf("bond length %s must be positive, got %g", name, l)
		}
	}
	for name, a := range map[string]float64{"n_ca_c": g.NCAC, "ca_c_n": g.CACN, "c_n_ca": g.CNCA, "ca_c_o": g.CACO} {
		if a <= 0 || a >= 180 {
			return fmt.Errorf("bond angle %s must lie in (0, 180), got %g", name, a)
		}
	}
	return nil
}

// ParseSequence accepts either one-letter codes ("GAS") or residue keys
// separated by spaces, commas or dashes ("GLY ALA SER"). A single known
// three-letter key is read as a key.
func ParseSequence(s string) ([]string, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == '\t' || r == '\n'
	})
	if len(fields) == 1 && (len(fields[0]) != 3 || mol.OneLetterCode(fields[0]) == '?') {
		codes := strings.ToUpper(fields[0])
		out := make([]string, 0, len(codes))
		for i := 0; i < len(codes); i++ {
			key, ok := mol.ThreeLetterCode(codes[i])
			if !ok {
				return nil, fmt.Errorf("unknown one-letter code %q at position %d", codes[i], i+1)
			}
			out = append(out, key)
		}
		return out, nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToUpper(f))
	}
	return out, nil
}

type backboneAtoms struct {
	n, ca, c, o mol.AtomHandle
}

// BuildBackbone appends a chain with N, CA, C and O for every residue key,
// peptide bonds between consecutive residues and PHI, PSI and OMEGA
// torsions. The atoms are placed through internal coordinates: bond
// lengths, angles and torsions come from g, then positions are generated.
func BuildBackbone(ent *mol.Entity, chainName string, sequence []string, g Geometry) (mol.ChainHandle, error) {
	if len(sequence) == 0 {
		return mol.ChainHandle{}, fmt.Errorf("empty sequence for chain %q", chainName)
	}
	if err := g.Validate(); err != nil {
		return mol.ChainHandle{}, err
	}
	chain, err := ent.InsertChain(chainName)
	if err != nil {
		return mol.ChainHandle{}, err
	}
	chain.SetType(mol.ChainTypePolypeptide)

	// 1. Topology on a rough zig-zag so every angle is well defined. Each
	// chain starts on its own plane.
	res := make([]backboneAtoms, len(sequence))
	z0 := 20 * float64(ent.ChainCount()-1)
	k := 0
	place := func() geom.Vec {
		p := geom.V(float64(k)*1.4, float64(k%2)*0.8, z0+0.1*float64(k%3))
		k++
		return p
	}
	for i, key := range sequence {
		r, err := ent.AppendResidue(chain, key)
		if err != nil {
			return chain, err
		}
		bb := &res[i]
		for _, spec := range []struct {
			name, ele string
			dst       *mol.AtomHandle
		}{{"N", "N", &bb.n}, {"CA", "C", &bb.ca}, {"C", "C", &bb.c}} {
			if *spec.dst, err = ent.InsertAtom(r, spec.name, place(), spec.ele, 1, 0, false); err != nil {
				return chain, err
			}
		}
		cpos := bb.c.Pos()
		if bb.o, err = ent.InsertAtom(r, "O", geom.V(cpos.X, cpos.Y+1.2, cpos.Z+0.5), "O", 1, 0, false); err != nil {
			return chain, err
		}
		pairs := [][2]mol.AtomHandle{{bb.n, bb.ca}, {bb.ca, bb.c}, {bb.c, bb.o}}
		if i > 0 {
			pairs = append(pairs, [2]mol.AtomHandle{res[i-1].c, bb.n})
		}
		for _, p := range pairs {
			if _, err := ent.Connect(p[0], p[1], 1); err != nil {
				return chain, err
			}
		}
	}

	type torsion struct {
		t     mol.TorsionHandle
		angle float64
	}
	var torsions []torsion
	add := func(name string, angle float64, a1, a2, a3, a4 mol.AtomHandle) error {
		t, err := ent.AddTorsion(name, a1, a2, a3, a4)
		if err != nil {
			return err
		}
		torsions = append(torsions, torsion{t, angle})
		return nil
	}
	for i := range res {
		cur := res[i]
		if i > 0 {
			if err := add("PHI", g.Phi, res[i-1].c, cur.n, cur.ca, cur.c); err != nil {
				return chain, err
			}
		}
		if i+1 < len(res) {
			next := res[i+1]
			if err := add("PSI", g.Psi, cur.n, cur.ca, cur.c, next.n); err != nil {
				return chain, err
			}
			if err := add("OMEGA", g.Omega, cur.ca, cur.c, next.n, next.ca); err != nil {
				return chain, err
			}
		}
	}

	// 2. Ideal internal coordinates, flushed to positions on Close.
	ed, err := ent.EditICS(mol.Buffered)
	if err != nil {
		return chain, err
	}
	defer ed.Close()
	setLength := func(a, b mol.AtomHandle, l float64) error {
		bond, ok := ent.FindBond(a, b)
		if !ok {
			return &mol.NotConnectedError{A: a, B: b}
		}
		return ed.SetBondLength(bond, l)
	}
	for i, cur := range res {
		steps := []error{
			setLength(cur.n, cur.ca, g.NCA),
			setLength(cur.ca, cur.c, g.CAC),
			setLength(cur.c, cur.o, g.CO),
			ed.SetAngle(cur.n, cur.ca, cur.c, geom.Rad(g.NCAC)),
			ed.SetAngle(cur.ca, cur.c, cur.o, geom.Rad(g.CACO)),
		}
		if i > 0 {
			prev := res[i-1]
			steps = append(steps,
				setLength(prev.c, cur.n, g.CN),
				ed.SetAngle(prev.ca, prev.c, cur.n, geom.Rad(g.CACN)),
				ed.SetAngle(prev.c, cur.n, cur.ca, geom.Rad(g.CNCA)),
			)
		}
		for _, err := range steps {
			if err != nil {
				return chain, fmt.Errorf("residue %d: %w", i+1, err)
			}
		}
	}
	for _, t := range torsions {
		if err := ed.SetTorsionAngle(t.t, geom.Rad(t.angle), true); err != nil {
			return chain, fmt.Errorf("torsion %s of %s: %w", t.t.Name(), t.t.Residue().QualifiedName(), err)
		}
	}
	// The carbonyl oxygen sits trans to the next nitrogen.
	for i, cur := range res {
		if err := ed.SetDihedralAngle(cur.n, cur.ca, cur.c, cur.o, geom.Rad(g.Psi+180), false); err != nil {
			return chain, fmt.Errorf("carbonyl of residue %d: %w", i+1, err)
		}
	}
	return chain, nil
}
