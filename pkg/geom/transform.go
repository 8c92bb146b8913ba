package geom

import (
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a rigid-body transform: a rotation followed by a translation.
// The zero value is not usable; start from IdentityTransform.
type Transform struct {
	Rot   *r3.Mat
	Trans Vec
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Rot: Identity()}
}

// Translation returns a pure translation by t.
func Translation(t Vec) Transform {
	return Transform{Rot: Identity(), Trans: t}
}

// Rotation returns a rotation by angle radians about axis through the origin.
func Rotation(axis Vec, angle float64) Transform {
	return Transform{Rot: AxisAngle(axis, angle)}
}

// RotationAbout returns a rotation by angle radians about axis through center.
func RotationAbout(center, axis Vec, angle float64) Transform {
	rot := AxisAngle(axis, angle)
	return Transform{Rot: rot, Trans: r3.Sub(center, rot.MulVec(center))}
}

// Apply returns the transformed point.
func (t Transform) Apply(p Vec) Vec {
	if t.Rot == nil {
		return r3.Add(p, t.Trans)
	}
	return r3.Add(t.Rot.MulVec(p), t.Trans)
}

// Invert maps a transformed point back. The rotation is assumed orthonormal.
func (t Transform) Invert(p Vec) Vec {
	q := r3.Sub(p, t.Trans)
	if t.Rot == nil {
		return q
	}
	return t.Rot.MulVecTrans(q)
}

// Then returns the transform that applies t first and o second.
func (t Transform) Then(o Transform) Transform {
	rt, ro := t.rot(), o.rot()
	return Transform{
		Rot:   Mul(ro, rt),
		Trans: r3.Add(ro.MulVec(t.Trans), o.Trans),
	}
}

// IsIdentity reports whether t leaves every point unchanged within Epsilon.
func (t Transform) IsIdentity() bool {
	if !Equal(t.Trans, Vec{}, Epsilon) {
		return false
	}
	if t.Rot == nil {
		return true
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if !scalar.EqualWithinAbs(t.Rot.At(i, j), want, Epsilon) {
				return false
			}
		}
	}
	return true
}

func (t Transform) rot() *r3.Mat {
	if t.Rot == nil {
		return Identity()
	}
	return t.Rot
}
