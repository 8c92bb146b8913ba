// Package geom provides the small set of geometric helpers the structural
// model needs on top of gonum's r3 package: distances, bond and dihedral
// angles, local coordinate frames and rigid-body transforms.
//
// Positions are plain r3.Vec values. Rotations are 3x3 *r3.Mat matrices that
// are treated as immutable once built.
package geom

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is the position type used throughout the module.
type Vec = r3.Vec

// Box is an axis-aligned bounding box.
type Box = r3.Box

// Epsilon is the default absolute tolerance for coordinate comparisons.
const Epsilon = 1e-6

// V is a shorthand constructor for a Vec.
func V(x, y, z float64) Vec {
	return Vec{X: x, Y: y, Z: z}
}

// --- Distances ---

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Distance2 returns the squared Euclidean distance between a and b.
func Distance2(a, b Vec) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// Equal reports whether a and b coincide within the absolute tolerance tol.
func Equal(a, b Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// --- Angles ---

// AngleBetween returns the angle in radians between two direction vectors.
// A zero-length vector yields 0.
func AngleBetween(u, v Vec) float64 {
	nu, nv := r3.Norm(u), r3.Norm(v)
	if nu == 0 || nv == 0 {
		return 0
	}
	return math.Acos(clamp(r3.Dot(u, v)/(nu*nv), -1, 1))
}

// Angle returns the angle a-b-c in radians, measured at b.
func Angle(a, b, c Vec) float64 {
	return AngleBetween(r3.Sub(a, b), r3.Sub(c, b))
}

// Dihedral returns the dihedral angle a-b-c-d in radians, in (-pi, pi].
// Looking down the b->c axis, the sign is positive when d is rotated
// counterclockwise relative to a.
func Dihedral(a, b, c, d Vec) float64 {
	b1 := r3.Sub(b, a)
	b2 := r3.Sub(c, b)
	b3 := r3.Sub(d, c)
	n1 := r3.Cross(b1, b2)
	n2 := r3.Cross(b2, b3)
	y := r3.Norm(b2) * r3.Dot(b1, n2)
	x := r3.Dot(n1, n2)
	return math.Atan2(y, x)
}

// NormalizeAngle maps an angle to the interval (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

// --- Aggregates ---

// Bounds returns the axis-aligned bounding box of the points. An empty input
// yields the zero box.
func Bounds(points []Vec) r3.Box {
	if len(points) == 0 {
		return r3.Box{}
	}
	box := r3.Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Min.Z = math.Min(box.Min.Z, p.Z)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
		box.Max.Z = math.Max(box.Max.Z, p.Z)
	}
	return box
}

// Centroid returns the unweighted mean of the points.
func Centroid(points []Vec) Vec {
	if len(points) == 0 {
		return Vec{}
	}
	var sum Vec
	for _, p := range points {
		sum = r3.Add(sum, p)
	}
	return r3.Scale(1/float64(len(points)), sum)
}

// WeightedCentroid returns the weighted mean of the points. If all weights
// are zero it falls back to the unweighted centroid.
func WeightedCentroid(points []Vec, weights []float64) Vec {
	total := floats.Sum(weights)
	if total == 0 || len(points) != len(weights) {
		return Centroid(points)
	}
	var sum Vec
	for i, p := range points {
		sum = r3.Add(sum, r3.Scale(weights[i], p))
	}
	return r3.Scale(1/total, sum)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
