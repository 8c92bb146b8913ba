package mol

import "strings"

type elementInfo struct {
	mass   float64 // atomic mass, Da
	radius float64 // van der Waals radius, Å
}

// Common elements in macromolecular structures. Unknown elements fall back
// to carbon-like defaults.
var elements = map[string]elementInfo{
	"H":  {1.008, 1.10},
	"D":  {2.014, 1.10},
	"C":  {12.011, 1.70},
	"N":  {14.007, 1.55},
	"O":  {15.999, 1.52},
	"F":  {18.998, 1.47},
	"NA": {22.990, 2.27},
	"MG": {24.305, 1.73},
	"P":  {30.974, 1.80},
	"S":  {32.06, 1.80},
	"CL": {35.45, 1.75},
	"K":  {39.098, 2.75},
	"CA": {40.078, 2.31},
	"MN": {54.938, 2.05},
	"FE": {55.845, 2.04},
	"CO": {58.933, 2.00},
	"NI": {58.693, 1.63},
	"CU": {63.546, 1.40},
	"ZN": {65.38, 1.39},
	"SE": {78.971, 1.90},
	"BR": {79.904, 1.85},
	"I":  {126.90, 1.98},
}

var defaultElement = elementInfo{12.011, 1.70}

func lookupElement(ele string) elementInfo {
	if info, ok := elements[strings.ToUpper(strings.TrimSpace(ele))]; ok {
		return info
	}
	return defaultElement
}

// ElementMass returns the default atomic mass for an element symbol.
func ElementMass(ele string) float64 { return lookupElement(ele).mass }

// ElementRadius returns the default van der Waals radius for an element symbol.
func ElementRadius(ele string) float64 { return lookupElement(ele).radius }
