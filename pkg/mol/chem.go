package mol

import (
	"fmt"
	"strings"
)

// ResNum is a residue number with an optional insertion code. Numbers are
// ordered by Num first and insertion code second; a zero InsCode sorts
// before any letter.
type ResNum struct {
	Num     int
	InsCode byte
}

// Num is a convenience constructor for a residue number without insertion
// code.
func Num(n int) ResNum { return ResNum{Num: n} }

// Less reports whether r orders before o.
func (r ResNum) Less(o ResNum) bool {
	if r.Num != o.Num {
		return r.Num < o.Num
	}
	return r.InsCode < o.InsCode
}

// Compare returns -1, 0 or +1.
func (r ResNum) Compare(o ResNum) int {
	switch {
	case r.Less(o):
		return -1
	case o.Less(r):
		return 1
	}
	return 0
}

// Next returns the number following r, dropping any insertion code.
func (r ResNum) Next() ResNum { return ResNum{Num: r.Num + 1} }

func (r ResNum) String() string {
	if r.InsCode == 0 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d%c", r.Num, r.InsCode)
}

// ChemClass is the polymer linking class of a residue.
type ChemClass byte

const (
	ChemUnknown        ChemClass = '?'
	ChemPeptideLinking ChemClass = 'P'
	ChemDPeptide       ChemClass = 'D'
	ChemLPeptide       ChemClass = 'L'
	ChemRNALinking     ChemClass = 'R'
	ChemDNALinking     ChemClass = 'S'
	ChemNonPolymer     ChemClass = 'N'
	ChemWater          ChemClass = 'W'
)

// IsPeptideLinking reports whether the class links through peptide bonds.
func (c ChemClass) IsPeptideLinking() bool {
	return c == ChemPeptideLinking || c == ChemDPeptide || c == ChemLPeptide
}

// IsNucleotideLinking reports whether the class links through phosphodiester bonds.
func (c ChemClass) IsNucleotideLinking() bool {
	return c == ChemRNALinking || c == ChemDNALinking
}

// SecStructure is a DSSP-style secondary structure code.
type SecStructure byte

const (
	SSCoil       SecStructure = 'C'
	SSAlphaHelix SecStructure = 'H'
	SS310Helix   SecStructure = 'G'
	SSPiHelix    SecStructure = 'I'
	SSStrand     SecStructure = 'E'
	SSBridge     SecStructure = 'B'
	SSTurn       SecStructure = 'T'
	SSBend       SecStructure = 'S'
)

// IsHelical reports whether s is any helix type.
func (s SecStructure) IsHelical() bool {
	return s == SSAlphaHelix || s == SS310Helix || s == SSPiHelix
}

// IsExtended reports whether s is a strand or bridge.
func (s SecStructure) IsExtended() bool {
	return s == SSStrand || s == SSBridge
}

// ChainType classifies a chain's content.
type ChainType int

const (
	ChainTypeUnknown ChainType = iota
	ChainTypePolypeptide
	ChainTypePolynucleotide
	ChainTypeNonPolymer
	ChainTypeWater
)

func (t ChainType) String() string {
	switch t {
	case ChainTypePolypeptide:
		return "polypeptide"
	case ChainTypePolynucleotide:
		return "polynucleotide"
	case ChainTypeNonPolymer:
		return "non-polymer"
	case ChainTypeWater:
		return "water"
	}
	return "unknown"
}

// ParseChainType maps a name produced by ChainType.String back to its value.
func ParseChainType(s string) ChainType {
	switch strings.ToLower(s) {
	case "polypeptide", "protein":
		return ChainTypePolypeptide
	case "polynucleotide", "nucleic":
		return ChainTypePolynucleotide
	case "non-polymer", "nonpolymer", "ligand":
		return ChainTypeNonPolymer
	case "water":
		return ChainTypeWater
	}
	return ChainTypeUnknown
}

type residueInfo struct {
	code  byte
	class ChemClass
}

var residueTable = map[string]residueInfo{
	"ALA": {'A', ChemLPeptide}, "ARG": {'R', ChemLPeptide}, "ASN": {'N', ChemLPeptide},
	"ASP": {'D', ChemLPeptide}, "CYS": {'C', ChemLPeptide}, "GLN": {'Q', ChemLPeptide},
	"GLU": {'E', ChemLPeptide}, "GLY": {'G', ChemPeptideLinking}, "HIS": {'H', ChemLPeptide},
	"ILE": {'I', ChemLPeptide}, "LEU": {'L', ChemLPeptide}, "LYS": {'K', ChemLPeptide},
	"MET": {'M', ChemLPeptide}, "PHE": {'F', ChemLPeptide}, "PRO": {'P', ChemLPeptide},
	"SER": {'S', ChemLPeptide}, "THR": {'T', ChemLPeptide}, "TRP": {'W', ChemLPeptide},
	"TYR": {'Y', ChemLPeptide}, "VAL": {'V', ChemLPeptide}, "SEC": {'U', ChemLPeptide},
	"PYL": {'O', ChemLPeptide}, "MSE": {'M', ChemLPeptide},
	"A": {'A', ChemRNALinking}, "C": {'C', ChemRNALinking}, "G": {'G', ChemRNALinking},
	"U": {'U', ChemRNALinking}, "DA": {'A', ChemDNALinking}, "DC": {'C', ChemDNALinking},
	"DG": {'G', ChemDNALinking}, "DT": {'T', ChemDNALinking},
	"HOH": {'?', ChemWater}, "WAT": {'?', ChemWater}, "DOD": {'?', ChemWater},
}

var oneToThree = map[byte]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS", 'Q': "GLN",
	'E': "GLU", 'G': "GLY", 'H': "HIS", 'I': "ILE", 'L': "LEU", 'K': "LYS",
	'M': "MET", 'F': "PHE", 'P': "PRO", 'S': "SER", 'T': "THR", 'W': "TRP",
	'Y': "TYR", 'V': "VAL", 'U': "SEC", 'O': "PYL",
}

func lookupResidue(key string) residueInfo {
	if info, ok := residueTable[strings.ToUpper(key)]; ok {
		return info
	}
	return residueInfo{'?', ChemUnknown}
}

// OneLetterCode returns the one-letter code for a residue key, or '?'.
func OneLetterCode(key string) byte { return lookupResidue(key).code }

// ThreeLetterCode returns the amino acid key for a one-letter code.
func ThreeLetterCode(code byte) (string, bool) {
	key, ok := oneToThree[code]
	return key, ok
}
