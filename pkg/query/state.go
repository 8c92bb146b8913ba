package query

import (
	"math"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol"
	"github.com/sanonone/molgraph/pkg/mol/spatial"
)

// State evaluates a query against the nodes of one entity. It caches the
// point clouds of "<>" sub-queries, so build one State per selection pass
// and throw it away when the entity changes.
//
// The evaluation order is chain, residue, atom: a level answers True or
// False when it can and Unknown when deeper properties are needed.
type State struct {
	q      *Query
	ent    *mol.Entity
	clouds map[*withinNode]*spatial.Grid[uint32]
}

// NewState prepares q for evaluation against ent.
func (q *Query) NewState(ent *mol.Entity) *State {
	return &State{q: q, ent: ent, clouds: make(map[*withinNode]*spatial.Grid[uint32])}
}

// Query returns the query being evaluated.
func (s *State) Query() *Query { return s.q }

type evalCtx struct {
	chain   mol.ChainHandle
	residue mol.ResidueHandle
	atom    mol.AtomHandle
}

// EvalChain decides the query for a whole chain if chain-level properties
// suffice.
func (s *State) EvalChain(c mol.ChainHandle) Tribool {
	if !s.q.IsValid() {
		return False
	}
	return s.eval(s.q.prog, mol.LevelChain, evalCtx{chain: c})
}

// EvalResidue decides the query for a whole residue if residue- and
// chain-level properties suffice.
func (s *State) EvalResidue(r mol.ResidueHandle) Tribool {
	if !s.q.IsValid() {
		return False
	}
	return s.eval(s.q.prog, mol.LevelResidue, evalCtx{chain: r.Chain(), residue: r})
}

// EvalAtom decides the query for an atom. The result is never Unknown.
func (s *State) EvalAtom(a mol.AtomHandle) Tribool {
	if !s.q.IsValid() {
		return False
	}
	r := a.Residue()
	return s.eval(s.q.prog, mol.LevelAtom, evalCtx{chain: r.Chain(), residue: r, atom: a})
}

// MatchAtom walks the levels top-down and stops at the first decision.
func (s *State) MatchAtom(a mol.AtomHandle) bool {
	r := a.Residue()
	if t := s.EvalChain(r.Chain()); t != Unknown {
		return t == True
	}
	if t := s.EvalResidue(r); t != Unknown {
		return t == True
	}
	return s.EvalAtom(a) == True
}

// MatchResidue reports whether the residue itself satisfies the query.
// Atom-level predicates cannot hold for a residue.
func (s *State) MatchResidue(r mol.ResidueHandle) bool {
	if t := s.EvalChain(r.Chain()); t != Unknown {
		return t == True
	}
	return s.EvalResidue(r) == True
}

// MatchChain reports whether the chain itself satisfies the query.
func (s *State) MatchChain(c mol.ChainHandle) bool {
	return s.EvalChain(c) == True
}

func (s *State) eval(prog *program, lvl mol.Level, ctx evalCtx) Tribool {
	return run(prog.stacks[lvl], func(l *leaf) Tribool {
		if l.within != nil {
			return s.evalWithin(l, ctx.atom)
		}
		return evalComparison(l, ctx)
	})
}

func evalComparison(l *leaf, ctx evalCtx) Tribool {
	n := l.cmp
	var (
		v   mol.GenericValue
		ok  bool
		err error
	)
	if n.sel.generic {
		var props *mol.Props
		switch n.sel.level {
		case mol.LevelChain:
			props = ctx.chain.Props()
		case mol.LevelResidue:
			props = ctx.residue.Props()
		default:
			props = ctx.atom.Props()
		}
		v, ok = props.Get(n.sel.key)
		if !ok && n.sel.hasDef {
			v, ok = mol.FloatValue(n.sel.def), true
		}
	} else {
		switch l.level {
		case mol.LevelChain:
			v, err = mol.ChainValue(ctx.chain, n.sel.prop)
		case mol.LevelResidue:
			v, err = mol.ResidueValue(ctx.residue, n.sel.prop)
		default:
			v, err = mol.AtomValue(ctx.atom, n.sel.prop)
		}
		ok = err == nil
	}
	if !ok {
		return Of(l.inverted)
	}
	return Of(compare(v, l.op, n.values))
}

// compare applies op. For '=' any of the values may match; '!=' requires
// that none does.
func compare(v mol.GenericValue, op cmpOp, values []value) bool {
	switch op {
	case cmpEq:
		for _, want := range values {
			if matches(v, want) {
				return true
			}
		}
		return false
	case cmpNe:
		for _, want := range values {
			if matches(v, want) {
				return false
			}
		}
		return true
	}
	x := v.AsFloat(math.NaN())
	if math.IsNaN(x) {
		return false
	}
	y := values[0].num
	switch op {
	case cmpLt:
		return x < y
	case cmpLe:
		return x <= y
	case cmpGt:
		return x > y
	}
	return x >= y
}

func matches(v mol.GenericValue, want value) bool {
	switch want.kind {
	case valNumber:
		return v.AsFloat(math.NaN()) == want.num
	case valRange:
		x := v.AsFloat(math.NaN())
		return x >= want.lo && x <= want.hi
	case valBool:
		return v.AsBool(!want.b) == want.b
	case valPattern:
		return want.pattern.MatchString(v.AsString())
	}
	return v.AsString() == want.str
}

func (s *State) evalWithin(l *leaf, a mol.AtomHandle) Tribool {
	n := l.within
	p := a.Pos()
	var hit bool
	if n.sub == nil {
		for _, q := range n.points {
			if geom.Distance(p, q) <= n.radius {
				hit = true
				break
			}
		}
	} else {
		hit = s.cloud(n).AnyWithin(p, n.radius)
	}
	if l.inverted {
		return Of(!hit)
	}
	return Of(hit)
}

// cloud returns the transformed positions of the atoms selected by a "<>"
// sub-query, indexed for proximity lookups.
func (s *State) cloud(n *withinNode) *spatial.Grid[uint32] {
	if g, ok := s.clouds[n]; ok {
		return g
	}
	cell := n.radius
	if cell < 1 {
		cell = 1
	}
	g := spatial.NewGrid[uint32](cell)
	for _, c := range s.ent.Chains() {
		ct := s.eval(n.sub, mol.LevelChain, evalCtx{chain: c})
		if ct == False {
			continue
		}
		for _, r := range c.Residues() {
			rt := ct
			if rt == Unknown {
				rt = s.eval(n.sub, mol.LevelResidue, evalCtx{chain: c, residue: r})
			}
			if rt == False {
				continue
			}
			for _, a := range r.Atoms() {
				if rt == True || s.eval(n.sub, mol.LevelAtom, evalCtx{chain: c, residue: r, atom: a}) == True {
					g.Add(a.Index(), a.Pos())
				}
			}
		}
	}
	s.clouds[n] = g
	return g
}
