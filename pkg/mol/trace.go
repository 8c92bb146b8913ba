package mol

import (
	"github.com/sanonone/molgraph/pkg/metrics"
)

// Directionality tracing turns the undirected bond graph into a forest.
// Every non-root atom ends up with exactly one primary bond pointing to its
// parent (bond.first is the parent, bond.second the child) and any number of
// secondary bonds leading to its children. Bonds that would close a ring are
// flagged as closures and left out of the tree.
//
// The walk is iterative so fragments of any size trace without deep
// recursion. Secondary lists stay sorted by bond slot, which makes the result
// independent of how often the trace has run.

// Fragments returns the roots of the directionality trees, tracing first if
// the bond graph changed.
func (e *Entity) Fragments() ([]AtomHandle, error) {
	if err := e.ensureTraceErr(); err != nil {
		return nil, err
	}
	out := make([]AtomHandle, len(e.fragments))
	for i, slot := range e.fragments {
		out[i] = e.atomHandle(slot)
	}
	return out, nil
}

// TraceDirectionality recomputes the bond directionality unconditionally.
func (e *Entity) TraceDirectionality() error {
	return e.trace()
}

// ensureTrace backs the handle accessors that cannot return an error. A
// failed trace leaves the previous tree in place and is logged with the
// accessor that hit it; Fragments and TraceDirectionality report it.
func (e *Entity) ensureTrace(op string) {
	if err := e.ensureTraceErr(); err != nil {
		e.log.Warn("[Trace] serving stale directionality", "entity", e.name, "op", op, "error", err)
	}
}

func (e *Entity) ensureTraceErr() error {
	if !e.dirty.trace {
		return nil
	}
	return e.trace()
}

func (e *Entity) trace() error {
	metrics.TraceRunsTotal.Inc()

	// Collect atoms in hierarchical order and reset their tree state.
	order := make([]uint32, 0, e.atomCount)
	e.forEachAtomSlot(func(slot uint32) {
		order = append(order, slot)
		n := &e.atoms[slot]
		if n.primary != noSlot {
			n.secondary = insertSorted(n.secondary, n.primary)
			n.primary = noSlot
		}
	})
	for i := range e.bonds {
		e.bonds[i].closure = false
	}

	capacity := uint32(len(e.atoms))
	visited := newBitSet(capacity)
	traced := newBitSet(capacity)
	for i := range e.bonds {
		if e.bonds[i].alive {
			visited.add(e.bonds[i].second)
		}
	}

	e.fragments = e.fragments[:0]
	remaining := len(order)
	var stack []uint32

	walk := func(root uint32) {
		traced.add(root)
		remaining--
		e.fragments = append(e.fragments, root)
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, bs := range e.atoms[x].secondary {
				b := &e.bonds[bs]
				if b.closure {
					continue
				}
				y := b.other(x)
				if traced.has(y) {
					if e.atoms[y].primary != bs {
						// Point the closure away from the earlier atom so
						// roots never end up as a second endpoint.
						b.first, b.second = y, x
						b.closure = true
					}
					continue
				}
				if b.first != x {
					b.reverse()
				}
				e.atoms[y].secondary = removeSlot(e.atoms[y].secondary, bs)
				e.atoms[y].primary = bs
				traced.add(y)
				remaining--
				stack = append(stack, y)
			}
		}
	}

	for _, slot := range order {
		if !visited.has(slot) && !traced.has(slot) {
			walk(slot)
		}
	}

	// What is left only belongs to cycles without a free root. Cut the bond
	// with the largest index distance between its endpoints and start a new
	// fragment at its former second endpoint.
	for remaining > 0 {
		best := noSlot
		var bestDiff uint32
		for i := range e.bonds {
			b := &e.bonds[i]
			if !b.alive || traced.has(b.first) || traced.has(b.second) {
				continue
			}
			d := absDiff(e.atoms[b.first].index, e.atoms[b.second].index)
			if best == noSlot || d > bestDiff {
				best, bestDiff = uint32(i), d
			}
		}
		if best == noSlot {
			e.log.Error("[Trace] directionality trace reached a locked state",
				"entity", e.name, "untraced_atoms", remaining)
			return ErrLockedState
		}
		b := &e.bonds[best]
		root := b.second
		b.reverse()
		visited.remove(root)
		walk(root)
	}

	e.dirty.traced()
	e.log.Debug("[Trace] directionality traced", "entity", e.name,
		"atoms", len(order), "fragments", len(e.fragments))
	return nil
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
