// Package query implements the selection language used to filter molecular
// graphs.
//
// A query combines property comparisons with and, or and not:
//
//	rname=GLY,ALA and aname=CA
//	rnum=10:20 or (cname=B and not ele=H)
//	5.0 <> [rname=HEM] and protein=true
//	A.12.CA
//
// Construction never fails. Parse errors are kept on the Query and reported
// by Err, so callers can build a query first and check it later.
package query

import (
	"github.com/sanonone/molgraph/pkg/metrics"
	"github.com/sanonone/molgraph/pkg/mol"
)

// Query is a compiled selection. It is immutable and may be shared between
// goroutines; evaluation state lives in State.
type Query struct {
	str  string
	prog *program
	err  *QueryError
}

// New parses and compiles s.
func New(s string) *Query {
	q := &Query{str: s}
	root, desc := parse(s)
	if desc != nil {
		q.err = &QueryError{Query: s, Desc: *desc}
		metrics.QueryErrorsTotal.Inc()
		return q
	}
	q.prog = compileProgram(root)
	return q
}

// All returns a query that selects everything.
func All() *Query { return New("") }

// String returns the query text.
func (q *Query) String() string { return q.str }

// IsValid reports whether the query parsed.
func (q *Query) IsValid() bool { return q.err == nil }

// Err returns the parse error, or nil.
func (q *Query) Err() error {
	if q.err == nil {
		return nil
	}
	return q.err
}

// IsEmpty reports whether the query selects everything unconditionally.
func (q *Query) IsEmpty() bool {
	return q.IsValid() && len(q.prog.stacks[mol.LevelAtom]) == 0
}

// MatchAtom evaluates the query for a single atom.
func (q *Query) MatchAtom(a mol.AtomHandle) bool {
	return q.NewState(a.Entity()).MatchAtom(a)
}

// MatchResidue evaluates the query for a residue using chain- and
// residue-level properties.
func (q *Query) MatchResidue(r mol.ResidueHandle) bool {
	return q.NewState(r.Entity()).MatchResidue(r)
}

// MatchChain evaluates the query for a chain using chain-level properties.
func (q *Query) MatchChain(c mol.ChainHandle) bool {
	return q.NewState(c.Entity()).MatchChain(c)
}
