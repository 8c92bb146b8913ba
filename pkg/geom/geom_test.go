package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAngleAndDihedral(t *testing.T) {
	a := V(1, 0, 0)
	b := V(0, 0, 0)
	c := V(0, 1, 0)
	if got := Angle(a, b, c); !scalar.EqualWithinAbs(got, math.Pi/2, 1e-12) {
		t.Fatalf("Angle = %v, want pi/2", got)
	}

	// d rotated by alpha about +z relative to a gives a dihedral of alpha.
	for _, alpha := range []float64{0.3, -1.2, math.Pi / 2, 2.5} {
		p := V(1, 0, 0)
		q := V(0, 0, 0)
		r := V(0, 0, 1)
		d := r3.Add(r, V(math.Cos(alpha), math.Sin(alpha), 0))
		if got := Dihedral(p, q, r, d); !scalar.EqualWithinAbs(got, alpha, 1e-9) {
			t.Errorf("Dihedral(alpha=%v) = %v", alpha, got)
		}
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	for _, v := range []Vec{V(1, 2, 3), V(-0.5, 0.1, -2), V(0, 0, 1.5), V(0, -3, 0)} {
		l, th, ph := ToSpherical(v)
		back := SphericalDir(l, th, ph)
		if !Equal(v, back, 1e-9) {
			t.Errorf("round trip of %v gave %v", v, back)
		}
	}
}

func TestChildFrameZAxisFollowsBond(t *testing.T) {
	parent := AxisAngle(V(1, 1, 0), 0.7)
	theta, phi := 1.1, -0.4
	child := ChildFrame(parent, theta, phi)

	bond := parent.MulVec(SphericalDir(1, theta, phi))
	z := child.MulVec(V(0, 0, 1))
	if !Equal(bond, z, 1e-9) {
		t.Fatalf("child z axis %v does not follow bond %v", z, bond)
	}
}

func TestTransformThenAndInvert(t *testing.T) {
	rot := Rotation(V(0, 0, 1), math.Pi/2)
	shift := Translation(V(1, 2, 3))
	both := rot.Then(shift)

	p := V(1, 0, 0)
	got := both.Apply(p)
	if !Equal(got, V(1, 3, 3), 1e-9) {
		t.Fatalf("Apply = %v, want (1,3,3)", got)
	}
	if back := both.Invert(got); !Equal(back, p, 1e-9) {
		t.Fatalf("Invert = %v, want %v", back, p)
	}
	if both.IsIdentity() {
		t.Fatal("composite transform reported as identity")
	}
	if !IdentityTransform().IsIdentity() {
		t.Fatal("identity transform not reported as identity")
	}
}

func TestBoundsAndCentroid(t *testing.T) {
	pts := []Vec{V(0, 0, 0), V(2, -1, 4), V(1, 3, -2)}
	box := Bounds(pts)
	if box.Min != V(0, -1, -2) || box.Max != V(2, 3, 4) {
		t.Fatalf("Bounds = %+v", box)
	}
	if c := Centroid(pts); !Equal(c, V(1, 2.0/3, 2.0/3), 1e-12) {
		t.Fatalf("Centroid = %v", c)
	}
	if c := WeightedCentroid(pts, []float64{1, 0, 0}); !Equal(c, V(0, 0, 0), 1e-12) {
		t.Fatalf("WeightedCentroid = %v", c)
	}
}
