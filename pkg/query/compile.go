package query

import "github.com/sanonone/molgraph/pkg/mol"

// A query is compiled into one postfix selection stack per hierarchy level.
// Predicates that need a deeper level than the stack's become Unknown
// constants, so a chain stack can decide "rname=GLY and cname=A" to be false
// for chain B without looking at any residue.
//
// "not" is pushed down to the leaves while compiling: an inversion stack
// tracks whether the current subtree is negated, which swaps and/or and picks
// the negated comparison operator. The stacks therefore contain no negation.

type instrKind uint8

const (
	instrLeaf instrKind = iota
	instrConst
	instrAnd
	instrOr
	// instrSkipIfFalse and instrSkipIfTrue short-circuit: if the value on top
	// of the stack already decides the pending and/or, jump past its right
	// operand and the combining instruction.
	instrSkipIfFalse
	instrSkipIfTrue
)

type leaf struct {
	cmp    *compNode
	within *withinNode
	op     cmpOp
	// inverted is set when the leaf sits under an odd number of "not"s.
	// Predicates without a value (missing generic property) use it to
	// report the negated outcome.
	inverted bool
	level    mol.Level
}

type instr struct {
	kind instrKind
	leaf *leaf
	val  Tribool
	skip int
}

// program holds the per-level selection stacks of one expression.
type program struct {
	stacks [3][]instr
}

func compileProgram(root node) *program {
	prog := &program{}
	if root == nil {
		return prog
	}
	for lvl := mol.LevelChain; lvl <= mol.LevelAtom; lvl++ {
		c := &compiler{level: lvl}
		c.compile(root)
		prog.stacks[lvl] = c.code
	}
	return prog
}

type compiler struct {
	level mol.Level
	code  []instr
	inv   []bool
}

func (c *compiler) negated() bool {
	return len(c.inv) > 0 && c.inv[len(c.inv)-1]
}

func (c *compiler) compile(n node) {
	switch n := n.(type) {
	case *notNode:
		c.inv = append(c.inv, !c.negated())
		c.compile(n.child)
		c.inv = c.inv[:len(c.inv)-1]

	case *binaryNode:
		op := n.op
		if c.negated() {
			// De Morgan.
			if op == opAnd {
				op = opOr
			} else {
				op = opAnd
			}
		}
		c.compile(n.left)
		at := len(c.code)
		skip, combine := instrSkipIfFalse, instrAnd
		if op == opOr {
			skip, combine = instrSkipIfTrue, instrOr
		}
		c.code = append(c.code, instr{kind: skip})
		c.compile(n.right)
		c.code = append(c.code, instr{kind: combine})
		c.code[at].skip = len(c.code) - 1 - at

	case *constNode:
		v := n.val
		if c.negated() {
			v = v.Not()
		}
		c.code = append(c.code, instr{kind: instrConst, val: v})

	case *compNode:
		c.emitLeaf(&leaf{cmp: n, op: n.op, level: level(n)})

	case *withinNode:
		c.emitLeaf(&leaf{within: n, level: mol.LevelAtom})
	}
}

func (c *compiler) emitLeaf(l *leaf) {
	if l.level > c.level {
		c.code = append(c.code, instr{kind: instrConst, val: Unknown})
		return
	}
	if c.negated() {
		l.op = l.op.negate()
		l.inverted = true
	}
	c.code = append(c.code, instr{kind: instrLeaf, leaf: l})
}

// run evaluates a selection stack. An empty stack selects everything.
func run(code []instr, eval func(*leaf) Tribool) Tribool {
	if len(code) == 0 {
		return True
	}
	stack := make([]Tribool, 0, 8)
	for pc := 0; pc < len(code); pc++ {
		in := &code[pc]
		switch in.kind {
		case instrLeaf:
			stack = append(stack, eval(in.leaf))
		case instrConst:
			stack = append(stack, in.val)
		case instrSkipIfFalse:
			if stack[len(stack)-1] == False {
				pc += in.skip
			}
		case instrSkipIfTrue:
			if stack[len(stack)-1] == True {
				pc += in.skip
			}
		case instrAnd, instrOr:
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			if in.kind == instrAnd {
				stack = append(stack, a.And(b))
			} else {
				stack = append(stack, a.Or(b))
			}
		}
	}
	return stack[len(stack)-1]
}
