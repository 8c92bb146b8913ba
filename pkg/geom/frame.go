package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Local frames are orthonormal 3x3 rotations. The internal coordinate
// system places every child atom at
//
//	child = parent + Frame(parent) * Spherical(length, theta, phi)
//
// and derives the child's own frame as Frame(parent) * Rz(phi) * Ry(theta),
// so the child frame's z axis always points along the bond it was reached by.

// Identity returns a new 3x3 identity matrix.
func Identity() *r3.Mat {
	return r3.NewMat([]float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// RotZ returns the rotation by a radians about the z axis.
func RotZ(a float64) *r3.Mat {
	s, c := math.Sincos(a)
	return r3.NewMat([]float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// RotY returns the rotation by a radians about the y axis.
func RotY(a float64) *r3.Mat {
	s, c := math.Sincos(a)
	return r3.NewMat([]float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// AxisAngle returns the rotation by a radians about axis. The columns are
// built by rotating the basis vectors.
func AxisAngle(axis Vec, a float64) *r3.Mat {
	if r3.Norm(axis) == 0 {
		return Identity()
	}
	ex := r3.Rotate(Vec{X: 1}, a, axis)
	ey := r3.Rotate(Vec{Y: 1}, a, axis)
	ez := r3.Rotate(Vec{Z: 1}, a, axis)
	return r3.NewMat([]float64{
		ex.X, ey.X, ez.X,
		ex.Y, ey.Y, ez.Y,
		ex.Z, ey.Z, ez.Z,
	})
}

// Mul returns the product a*b as a new matrix.
func Mul(a, b *r3.Mat) *r3.Mat {
	m := r3.NewMat(make([]float64, 9))
	m.Mul(a, b)
	return m
}

// Transpose returns the transpose of m as a new matrix. For a rotation this
// is its inverse.
func Transpose(m *r3.Mat) *r3.Mat {
	return r3.NewMat([]float64{
		m.At(0, 0), m.At(1, 0), m.At(2, 0),
		m.At(0, 1), m.At(1, 1), m.At(2, 1),
		m.At(0, 2), m.At(1, 2), m.At(2, 2),
	})
}

// SphericalDir returns the vector of the given length pointing at polar
// angle theta from +z and azimuth phi from +x.
func SphericalDir(length, theta, phi float64) Vec {
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	return Vec{X: length * st * cp, Y: length * st * sp, Z: length * ct}
}

// ToSpherical is the inverse of SphericalDir. A zero vector yields zeros.
func ToSpherical(l Vec) (length, theta, phi float64) {
	length = r3.Norm(l)
	if length == 0 {
		return 0, 0, 0
	}
	theta = math.Acos(clamp(l.Z/length, -1, 1))
	phi = math.Atan2(l.Y, l.X)
	return length, theta, phi
}

// ChildFrame returns parent * Rz(phi) * Ry(theta).
func ChildFrame(parent *r3.Mat, theta, phi float64) *r3.Mat {
	return Mul(parent, Mul(RotZ(phi), RotY(theta)))
}

// Perpendicular returns some unit vector orthogonal to v.
func Perpendicular(v Vec) Vec {
	ref := Vec{X: 1}
	if math.Abs(v.X) > math.Abs(v.Y) && math.Abs(v.X) > math.Abs(v.Z) {
		ref = Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(v, ref))
}
