package query

import (
	"regexp"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol"
)

type node interface {
	span() Range
}

type logicOp int

const (
	opAnd logicOp = iota
	opOr
)

type binaryNode struct {
	op          logicOp
	left, right node
	rng         Range
}

type notNode struct {
	child node
	rng   Range
}

// constNode is a predicate with a fixed outcome, e.g. a shorthand made of
// wildcards only.
type constNode struct {
	val Tribool
	rng Range
}

type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

var cmpOps = map[string]cmpOp{
	"=": cmpEq, "!=": cmpNe, "<": cmpLt, "<=": cmpLe, ">": cmpGt, ">=": cmpGe,
}

func (o cmpOp) String() string {
	return [...]string{"=", "!=", "<", "<=", ">", ">="}[o]
}

// negate returns the operator matching exactly the values o rejects.
func (o cmpOp) negate() cmpOp {
	switch o {
	case cmpEq:
		return cmpNe
	case cmpNe:
		return cmpEq
	case cmpLt:
		return cmpGe
	case cmpLe:
		return cmpGt
	case cmpGt:
		return cmpLe
	}
	return cmpLt
}

// selector names the property a comparison reads: a built-in one or a
// generic property at a fixed level.
type selector struct {
	name    string
	prop    mol.Prop
	generic bool
	level   mol.Level
	key     string
	hasDef  bool
	def     float64
}

type valueKind int

const (
	valNumber valueKind = iota
	valRange
	valString
	valPattern
	valBool
)

type value struct {
	kind    valueKind
	num     float64
	lo, hi  float64
	str     string
	pattern *regexp.Regexp
	b       bool
}

type compNode struct {
	sel    selector
	op     cmpOp
	values []value
	rng    Range
}

type withinNode struct {
	radius float64
	points []geom.Vec
	sub    *program
	rng    Range
}

func (n *binaryNode) span() Range { return n.rng }
func (n *notNode) span() Range    { return n.rng }
func (n *constNode) span() Range  { return n.rng }
func (n *compNode) span() Range   { return n.rng }
func (n *withinNode) span() Range { return n.rng }

// level returns the hierarchy level a predicate needs to be decided.
func level(n node) mol.Level {
	switch n := n.(type) {
	case *compNode:
		if n.sel.generic {
			return n.sel.level
		}
		return n.sel.prop.Level
	case *withinNode:
		return mol.LevelAtom
	}
	return mol.LevelChain
}
