// Package spatial provides a grid-bucketed organizer for proximity queries
// over 3D points.
//
// Space is cut into cubic cells of a fixed edge length. Each occupied cell
// keeps the keys and positions that fall into it, so a radius query only
// inspects the (2*ceil(r/cell)+1)^3 cells around the query point and filters
// the candidates by exact distance. The organizer is not safe for concurrent
// mutation; callers serialize access.
package spatial

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCellSize is the cell edge length used when none is given. It is on
// the order of a typical contact cutoff.
const DefaultCellSize = 5.0

type cellKey struct {
	X, Y, Z int
}

type entry[K comparable] struct {
	Key K
	Pos r3.Vec
}

// Grid maps cubic cells to the keys positioned inside them.
type Grid[K comparable] struct {
	cell    float64
	buckets map[cellKey][]entry[K]
	count   int

	// Occupied cell range, grown on Add and reset on Clear.
	lo, hi cellKey
}

// NewGrid creates an empty grid. A non-positive cell size falls back to
// DefaultCellSize.
func NewGrid[K comparable](cellSize float64) *Grid[K] {
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = DefaultCellSize
	}
	return &Grid[K]{
		cell:    cellSize,
		buckets: make(map[cellKey][]entry[K]),
	}
}

// CellSize returns the grid's cell edge length.
func (g *Grid[K]) CellSize() float64 { return g.cell }

// Len returns the number of stored entries.
func (g *Grid[K]) Len() int { return g.count }

// Clear removes all entries but keeps the cell size.
func (g *Grid[K]) Clear() {
	g.buckets = make(map[cellKey][]entry[K])
	g.count = 0
	g.lo, g.hi = cellKey{}, cellKey{}
}

func (g *Grid[K]) keyFor(p r3.Vec) cellKey {
	return cellKey{
		X: int(math.Floor(p.X / g.cell)),
		Y: int(math.Floor(p.Y / g.cell)),
		Z: int(math.Floor(p.Z / g.cell)),
	}
}

// Add stores key at position pos. Adding the same key twice stores it twice.
func (g *Grid[K]) Add(key K, pos r3.Vec) {
	ck := g.keyFor(pos)
	g.buckets[ck] = append(g.buckets[ck], entry[K]{Key: key, Pos: pos})
	if g.count == 0 {
		g.lo, g.hi = ck, ck
	} else {
		g.lo = cellKey{min(g.lo.X, ck.X), min(g.lo.Y, ck.Y), min(g.lo.Z, ck.Z)}
		g.hi = cellKey{max(g.hi.X, ck.X), max(g.hi.Y, ck.Y), max(g.hi.Z, ck.Z)}
	}
	g.count++
}

// Remove deletes key from the cell containing pos. It returns false when the
// key is not stored there.
func (g *Grid[K]) Remove(key K, pos r3.Vec) bool {
	ck := g.keyFor(pos)
	bucket := g.buckets[ck]
	for i := range bucket {
		if bucket[i].Key != key {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket = bucket[:last]
		if len(bucket) == 0 {
			delete(g.buckets, ck)
		} else {
			g.buckets[ck] = bucket
		}
		g.count--
		return true
	}
	return false
}

// Move relocates key from one position to another.
func (g *Grid[K]) Move(key K, from, to r3.Vec) {
	if g.keyFor(from) == g.keyFor(to) {
		bucket := g.buckets[g.keyFor(from)]
		for i := range bucket {
			if bucket[i].Key == key {
				bucket[i].Pos = to
				return
			}
		}
	}
	if g.Remove(key, from) {
		g.Add(key, to)
	}
}

// ForEachWithin calls fn for every entry within radius of p, in no
// particular order, until fn returns false.
func (g *Grid[K]) ForEachWithin(p r3.Vec, radius float64, fn func(key K, pos r3.Vec) bool) {
	if g.count == 0 || !(radius >= 0) {
		return
	}
	r2 := radius * radius
	visit := func(bucket []entry[K]) bool {
		for _, e := range bucket {
			if r3.Norm2(r3.Sub(e.Pos, p)) <= r2 {
				if !fn(e.Key, e.Pos) {
					return false
				}
			}
		}
		return true
	}

	// Sized in float64: a huge or infinite radius must not wrap the cell
	// count. A neighbourhood larger than the occupied buckets is cheaper to
	// handle by walking the buckets directly.
	cells := math.Ceil(radius / g.cell)
	if side := 2*cells + 1; side*side*side > float64(len(g.buckets)) {
		center := g.keyFor(p)
		for ck, bucket := range g.buckets {
			if cellDist(ck, center) > cells {
				continue
			}
			if !visit(bucket) {
				return
			}
		}
		return
	}

	span := int(cells)
	center := g.keyFor(p)
	for x := center.X - span; x <= center.X+span; x++ {
		for y := center.Y - span; y <= center.Y+span; y++ {
			for z := center.Z - span; z <= center.Z+span; z++ {
				if bucket, ok := g.buckets[cellKey{x, y, z}]; ok {
					if !visit(bucket) {
						return
					}
				}
			}
		}
	}
}

// FindWithin returns the keys of all entries within radius of p.
func (g *Grid[K]) FindWithin(p r3.Vec, radius float64) []K {
	var out []K
	g.ForEachWithin(p, radius, func(key K, _ r3.Vec) bool {
		out = append(out, key)
		return true
	})
	return out
}

// AnyWithin reports whether at least one entry lies within radius of p.
func (g *Grid[K]) AnyWithin(p r3.Vec, radius float64) bool {
	found := false
	g.ForEachWithin(p, radius, func(K, r3.Vec) bool {
		found = true
		return false
	})
	return found
}

// FindNearest returns up to k entries closest to p, nearest first. Cells are
// scanned in growing shells around p until no unscanned cell can hold a
// closer point than the current k-th best.
func (g *Grid[K]) FindNearest(p r3.Vec, k int) []Neighbor[K] {
	if k <= 0 || g.count == 0 {
		return nil
	}
	best := newMaxHeap[K](k)
	center := g.keyFor(p)
	offer := func(bucket []entry[K]) {
		for _, e := range bucket {
			best.offer(Neighbor[K]{Key: e.Key, Distance: r3.Norm(r3.Sub(e.Pos, p))}, k)
		}
	}

	maxShell := max(
		abs(g.lo.X-center.X), abs(g.hi.X-center.X),
		abs(g.lo.Y-center.Y), abs(g.hi.Y-center.Y),
		abs(g.lo.Z-center.Z), abs(g.hi.Z-center.Z),
	)
	for s := 0; s <= maxShell; s++ {
		if side := 2*s + 1; side*side*side > 8*len(g.buckets) {
			// Shells have become sparse; finish with a flat scan.
			best = newMaxHeap[K](k)
			for _, bucket := range g.buckets {
				offer(bucket)
			}
			break
		}
		g.forShell(center, s, offer)
		// Any point in shell s+1 is at least s cells away from p.
		if best.Len() == k && best.worst() <= float64(s)*g.cell {
			break
		}
	}

	out := make([]Neighbor[K], best.Len())
	copy(out, *best)
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// forShell visits the buckets whose Chebyshev cell distance from center is
// exactly s.
func (g *Grid[K]) forShell(center cellKey, s int, fn func([]entry[K])) {
	for x := -s; x <= s; x++ {
		for y := -s; y <= s; y++ {
			for z := -s; z <= s; z++ {
				if abs(x) != s && abs(y) != s && abs(z) != s {
					continue
				}
				if bucket, ok := g.buckets[cellKey{center.X + x, center.Y + y, center.Z + z}]; ok {
					fn(bucket)
				}
			}
		}
	}
}

// cellDist is the Chebyshev distance between two cells.
func cellDist(a, b cellKey) float64 {
	return float64(max(abs(a.X-b.X), abs(a.Y-b.Y), abs(a.Z-b.Z)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
