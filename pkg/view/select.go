package view

import (
	"time"

	"github.com/sanonone/molgraph/pkg/metrics"
	"github.com/sanonone/molgraph/pkg/mol"
	"github.com/sanonone/molgraph/pkg/query"
)

// source is the hierarchy a selection walks: a whole entity or a view.
type source interface {
	entity() *mol.Entity
	chains() []mol.ChainHandle
	residues(c mol.ChainHandle) []mol.ResidueHandle
	atoms(r mol.ResidueHandle) []mol.AtomHandle
}

type entitySource struct{ ent *mol.Entity }

func (s entitySource) entity() *mol.Entity                              { return s.ent }
func (s entitySource) chains() []mol.ChainHandle                        { return s.ent.Chains() }
func (s entitySource) residues(c mol.ChainHandle) []mol.ResidueHandle { return c.Residues() }
func (s entitySource) atoms(r mol.ResidueHandle) []mol.AtomHandle     { return r.Atoms() }

type viewSource struct{ v *EntityView }

func (s viewSource) entity() *mol.Entity { return s.v.ent }

func (s viewSource) chains() []mol.ChainHandle {
	out := make([]mol.ChainHandle, 0, len(s.v.chains))
	for _, c := range s.v.chains {
		out = append(out, c.handle)
	}
	return out
}

func (s viewSource) residues(c mol.ChainHandle) []mol.ResidueHandle {
	cv, ok := s.v.chainIdx[c]
	if !ok {
		return nil
	}
	out := make([]mol.ResidueHandle, 0, len(cv.residues))
	for _, r := range cv.residues {
		out = append(out, r.handle)
	}
	return out
}

func (s viewSource) atoms(r mol.ResidueHandle) []mol.AtomHandle {
	rv, ok := s.v.resIdx[r]
	if !ok {
		return nil
	}
	out := make([]mol.AtomHandle, 0, len(rv.atoms))
	for _, a := range rv.atoms {
		out = append(out, a.handle)
	}
	return out
}

// Select runs q against ent and returns the matching part as a new view.
// An invalid query returns its *query.QueryError.
func Select(ent *mol.Entity, q *query.Query, flags Flags) (*EntityView, error) {
	return selectFrom(entitySource{ent}, q, flags)
}

// SelectString compiles s and selects with it.
func SelectString(ent *mol.Entity, s string, flags Flags) (*EntityView, error) {
	return Select(ent, query.New(s), flags)
}

// Select runs q against the nodes of the view only.
func (v *EntityView) Select(q *query.Query, flags Flags) (*EntityView, error) {
	return selectFrom(viewSource{v}, q, flags)
}

// selectFrom walks chains, residues and atoms top-down. A level that
// evaluates True takes its whole subtree, False prunes it and Unknown
// defers to the level below.
func selectFrom(src source, q *query.Query, flags Flags) (*EntityView, error) {
	start := time.Now()
	defer func() {
		metrics.SelectionDuration.Observe(time.Since(start).Seconds())
	}()
	if err := q.Err(); err != nil {
		metrics.SelectionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	flags &^= CheckDuplicates | IncludeResidues | IncludeAtoms
	st := q.NewState(src.entity())
	out := New(src.entity())
	for _, c := range src.chains() {
		ct := st.EvalChain(c)
		if ct == query.False {
			continue
		}
		var cv *ChainView
		if ct == query.True {
			cv = out.chainView(c, true)
		}
		for _, r := range src.residues(c) {
			rt := ct
			if rt == query.Unknown {
				rt = st.EvalResidue(r)
			}
			switch rt {
			case query.False:
				continue
			case query.True:
				if cv == nil {
					cv = out.chainView(c, true)
				}
				rv := out.addResidueTo(cv, r, flags)
				for _, a := range src.atoms(r) {
					out.addAtomTo(rv, a, flags)
				}
				continue
			}

			atoms := src.atoms(r)
			var hits []mol.AtomHandle
			for _, a := range atoms {
				if st.EvalAtom(a) == query.True {
					hits = append(hits, a)
					if flags.has(MatchResidues) {
						hits = atoms
						break
					}
				}
			}
			if len(hits) == 0 {
				continue
			}
			if cv == nil {
				cv = out.chainView(c, true)
			}
			rv := out.addResidueTo(cv, r, flags)
			for _, a := range hits {
				out.addAtomTo(rv, a, flags)
			}
		}
	}
	metrics.SelectionsTotal.WithLabelValues("ok").Inc()
	return out, nil
}
