package mol

import (
	"strings"
)

// Level is the hierarchy level a property lives on.
type Level int

const (
	LevelChain Level = iota
	LevelResidue
	LevelAtom
)

func (l Level) String() string {
	switch l {
	case LevelChain:
		return "chain"
	case LevelResidue:
		return "residue"
	case LevelAtom:
		return "atom"
	}
	return "unknown"
}

// PropType is the value type of a built-in property.
type PropType int

const (
	PropString PropType = iota
	PropInt
	PropFloat
	PropBool
)

func (t PropType) String() string {
	switch t {
	case PropString:
		return "string"
	case PropInt:
		return "int"
	case PropFloat:
		return "float"
	case PropBool:
		return "bool"
	}
	return "unknown"
}

// PropID identifies a built-in property.
type PropID int

const (
	PropChainName PropID = iota
	PropChainType
	PropResidueName
	PropResidueNumber
	PropResidueIndex
	PropResidueSecStructure
	PropPeptide
	PropProtein
	PropLigand
	PropWater
	PropResidueBFactor
	PropAtomName
	PropElement
	PropAtomIndex
	PropX
	PropY
	PropZ
	PropAtomBFactor
	PropOccupancy
	PropCharge
	PropMass
	PropRadius
	PropHetAtom
)

// Prop describes a built-in property.
type Prop struct {
	ID    PropID
	Name  string
	Type  PropType
	Level Level
}

// IsNumeric reports whether the property compares as a number.
func (p Prop) IsNumeric() bool { return p.Type == PropInt || p.Type == PropFloat }

var props = []Prop{
	{PropChainName, "cname", PropString, LevelChain},
	{PropChainType, "ctype", PropString, LevelChain},
	{PropResidueName, "rname", PropString, LevelResidue},
	{PropResidueNumber, "rnum", PropInt, LevelResidue},
	{PropResidueIndex, "rindex", PropInt, LevelResidue},
	{PropResidueSecStructure, "rtype", PropString, LevelResidue},
	{PropPeptide, "peptide", PropBool, LevelResidue},
	{PropProtein, "protein", PropBool, LevelResidue},
	{PropLigand, "ligand", PropBool, LevelResidue},
	{PropWater, "water", PropBool, LevelResidue},
	{PropResidueBFactor, "rbfac", PropFloat, LevelResidue},
	{PropAtomName, "aname", PropString, LevelAtom},
	{PropElement, "ele", PropString, LevelAtom},
	{PropAtomIndex, "aindex", PropInt, LevelAtom},
	{PropX, "x", PropFloat, LevelAtom},
	{PropY, "y", PropFloat, LevelAtom},
	{PropZ, "z", PropFloat, LevelAtom},
	{PropAtomBFactor, "abfac", PropFloat, LevelAtom},
	{PropOccupancy, "occ", PropFloat, LevelAtom},
	{PropCharge, "acharge", PropFloat, LevelAtom},
	{PropMass, "amass", PropFloat, LevelAtom},
	{PropRadius, "aradius", PropFloat, LevelAtom},
	{PropHetAtom, "ishetatm", PropBool, LevelAtom},
}

var propAliases = map[string]string{
	"chain": "cname",
}

var propByName = func() map[string]Prop {
	m := make(map[string]Prop, len(props)+len(propAliases))
	for _, p := range props {
		m[p.Name] = p
	}
	for alias, name := range propAliases {
		m[alias] = m[name]
	}
	return m
}()

// LookupProp resolves a built-in property name (case-insensitive).
func LookupProp(name string) (Prop, bool) {
	p, ok := propByName[strings.ToLower(name)]
	return p, ok
}

// BuiltinProps lists the built-in properties.
func BuiltinProps() []Prop {
	return append([]Prop(nil), props...)
}

// ChainValue returns a chain-level property of c.
func ChainValue(c ChainHandle, p Prop) (GenericValue, error) {
	n := c.node()
	switch p.ID {
	case PropChainName:
		return StringValue(n.name), nil
	case PropChainType:
		return StringValue(n.ctype.String()), nil
	}
	return GenericValue{}, &PropertyError{Name: p.Name, Level: LevelChain}
}

// ResidueValue returns a residue- or chain-level property of r.
func ResidueValue(r ResidueHandle, p Prop) (GenericValue, error) {
	if p.Level == LevelChain {
		return ChainValue(r.Chain(), p)
	}
	n := r.node()
	switch p.ID {
	case PropResidueName:
		return StringValue(n.key), nil
	case PropResidueNumber:
		return IntValue(int64(n.num.Num)), nil
	case PropResidueIndex:
		return IntValue(int64(n.index)), nil
	case PropResidueSecStructure:
		return StringValue(string(rune(n.secStruct))), nil
	case PropPeptide:
		return BoolValue(n.chemClass.IsPeptideLinking()), nil
	case PropProtein:
		return BoolValue(r.IsProtein()), nil
	case PropLigand:
		return BoolValue(n.ligand), nil
	case PropWater:
		return BoolValue(n.chemClass == ChemWater), nil
	case PropResidueBFactor:
		return FloatValue(r.AverageBFactor()), nil
	}
	return GenericValue{}, &PropertyError{Name: p.Name, Level: LevelResidue}
}

// AtomValue returns a property of a, resolving residue- and chain-level
// properties through the atom's parents.
func AtomValue(a AtomHandle, p Prop) (GenericValue, error) {
	if p.Level != LevelAtom {
		return ResidueValue(a.Residue(), p)
	}
	n := a.node()
	switch p.ID {
	case PropAtomName:
		return StringValue(n.name), nil
	case PropElement:
		return StringValue(n.element), nil
	case PropAtomIndex:
		return IntValue(int64(n.index)), nil
	case PropX:
		return FloatValue(n.tpos.X), nil
	case PropY:
		return FloatValue(n.tpos.Y), nil
	case PropZ:
		return FloatValue(n.tpos.Z), nil
	case PropAtomBFactor:
		return FloatValue(n.bfac), nil
	case PropOccupancy:
		return FloatValue(n.occ), nil
	case PropCharge:
		return FloatValue(n.charge), nil
	case PropMass:
		return FloatValue(n.mass), nil
	case PropRadius:
		return FloatValue(n.radius), nil
	case PropHetAtom:
		return BoolValue(n.het), nil
	}
	return GenericValue{}, &PropertyError{Name: p.Name, Level: LevelAtom}
}

func lookupAt(name string, level Level) (Prop, error) {
	p, ok := LookupProp(name)
	if !ok {
		return Prop{}, &PropertyError{Name: name, Level: level, Msg: "unknown property"}
	}
	if p.Level > level {
		return Prop{}, &PropertyError{Name: name, Level: level}
	}
	return p, nil
}

// FloatProperty returns a numeric built-in property of the atom or of its
// residue or chain.
func (a AtomHandle) FloatProperty(name string) (float64, error) {
	p, err := lookupAt(name, LevelAtom)
	if err != nil {
		return 0, err
	}
	if !p.IsNumeric() {
		return 0, &PropertyError{Name: name, Level: LevelAtom, Msg: "not a numeric property"}
	}
	v, err := AtomValue(a, p)
	return v.AsFloat(0), err
}

// StringProperty returns any built-in property of the atom as text.
func (a AtomHandle) StringProperty(name string) (string, error) {
	p, err := lookupAt(name, LevelAtom)
	if err != nil {
		return "", err
	}
	v, err := AtomValue(a, p)
	return v.AsString(), err
}

// FloatProperty returns a numeric built-in property of the residue or its
// chain. Atom-level properties yield a PropertyError.
func (r ResidueHandle) FloatProperty(name string) (float64, error) {
	p, err := lookupAt(name, LevelResidue)
	if err != nil {
		return 0, err
	}
	if !p.IsNumeric() {
		return 0, &PropertyError{Name: name, Level: LevelResidue, Msg: "not a numeric property"}
	}
	v, err := ResidueValue(r, p)
	return v.AsFloat(0), err
}

// StringProperty returns a built-in property of the residue or its chain as
// text.
func (r ResidueHandle) StringProperty(name string) (string, error) {
	p, err := lookupAt(name, LevelResidue)
	if err != nil {
		return "", err
	}
	v, err := ResidueValue(r, p)
	return v.AsString(), err
}

// StringProperty returns a chain-level built-in property as text.
func (c ChainHandle) StringProperty(name string) (string, error) {
	p, err := lookupAt(name, LevelChain)
	if err != nil {
		return "", err
	}
	v, err := ChainValue(c, p)
	return v.AsString(), err
}
