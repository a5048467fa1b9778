package math

import (
	"math"
	"testing"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func nearMat4(a, b Mat4, eps float32) bool {
	for i := range a {
		if abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   [3]float32
		want [3]float32
	}{
		{"identity", Identity(), [3]float32{1, 2, 3}, [3]float32{1, 2, 3}},
		{"translate", Translate(10, 20, 30), [3]float32{1, 2, 3}, [3]float32{11, 22, 33}},
		{"scale", Scale(2, 3, 4), [3]float32{1, 1, 1}, [3]float32{2, 3, 4}},
		{"scale then translate", Translate(1, 0, 0).Mul(Scale(2, 2, 2)), [3]float32{1, 1, 1}, [3]float32{3, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			for i := range got {
				if abs(got[i]-tt.want[i]) > 1e-5 {
					t.Fatalf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
				}
			}
		})
	}
}

func TestMulIdentity(t *testing.T) {
	m := FromTRS(Vec3{1, 2, 3}, Quat{X: 0.2, Y: 0.4, Z: 0.1, W: 0.9}, Vec3{2, 2, 2})
	if got := m.Mul(Identity()); !nearMat4(got, m, 0) {
		t.Errorf("M * I = %v, want %v", got, m)
	}
	if got := Identity().Mul(m); !nearMat4(got, m, 0) {
		t.Errorf("I * M = %v, want %v", got, m)
	}
}

func TestFromTRSMatchesProduct(t *testing.T) {
	tr := Vec3{4, -1, 2}
	r := Quat{X: 0, Y: 0.7071068, Z: 0, W: 0.7071068}
	s := Vec3{1, 2, 3}

	want := Translate(tr.X, tr.Y, tr.Z).Mul(r.ToMat4()).Mul(Scale(s.X, s.Y, s.Z))
	if got := FromTRS(tr, r, s); !nearMat4(got, want, 1e-6) {
		t.Errorf("FromTRS = %v, want %v", got, want)
	}
}

func TestInverse(t *testing.T) {
	mats := map[string]Mat4{
		"trs":         FromTRS(Vec3{3, -2, 5}, Quat{X: 0.3, Y: 0.1, Z: -0.2, W: 0.9}, Vec3{2, 0.5, 1.5}),
		"perspective": Perspective(float32(math.Pi/4), 1.5, 0.1, 100),
		"view":        LookAt(Vec3{3, 4, 5}, Vec3{}, Vec3{0, 1, 0}),
	}
	for name, m := range mats {
		t.Run(name, func(t *testing.T) {
			if got := m.Mul(m.Inverse()); !nearMat4(got, Identity(), 1e-4) {
				t.Errorf("M * M^-1 = %v", got)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	if got := Scale(1, 0, 1).Inverse(); got != Identity() {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{0, 2, 5}
	v := LookAt(eye, Vec3{0, 2, 0}, Vec3{0, 1, 0})

	p := v.TransformPoint(eye.Array())
	if abs(p[0]) > 1e-5 || abs(p[1]) > 1e-5 || abs(p[2]) > 1e-5 {
		t.Errorf("eye in view space = %v, want origin", p)
	}
	// The target lies straight down -Z.
	p = v.TransformPoint([3]float32{0, 2, 0})
	if abs(p[0]) > 1e-5 || abs(p[1]) > 1e-5 || abs(p[2]+5) > 1e-5 {
		t.Errorf("target in view space = %v, want (0, 0, -5)", p)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(float32(math.Pi/2), 1, 1, 10)

	near := p.MulVec4(Vec4{0, 0, -1, 1})
	far := p.MulVec4(Vec4{0, 0, -10, 1})
	if d := near[2] / near[3]; abs(d+1) > 1e-5 {
		t.Errorf("near plane depth = %f, want -1", d)
	}
	if d := far[2] / far[3]; abs(d-1) > 1e-5 {
		t.Errorf("far plane depth = %f, want 1", d)
	}
}

func TestQuatToMat4(t *testing.T) {
	// 90 degrees about +Y takes +X to -Z.
	q := Quat{Y: 0.7071068, W: 0.7071068}
	p := q.ToMat4().TransformPoint([3]float32{1, 0, 0})
	if abs(p[0]) > 1e-5 || abs(p[1]) > 1e-5 || abs(p[2]+1) > 1e-5 {
		t.Errorf("rotated +X = %v, want (0, 0, -1)", p)
	}
}

func TestQuatNormalize(t *testing.T) {
	if got := (Quat{}).Normalize(); got != (Quat{W: 1}) {
		t.Errorf("zero quaternion normalized to %v, want identity", got)
	}
	// An unnormalized quaternion yields the same rotation.
	a := Quat{Y: 2, W: 2}.ToMat4()
	b := Quat{Y: 0.7071068, W: 0.7071068}.ToMat4()
	if !nearMat4(a, b, 1e-5) {
		t.Errorf("scaled quaternion rotation = %v, want %v", a, b)
	}
}

func TestVec3(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := (Vec3{1, 0, 0}).Cross(Vec3{0, 1, 0}); got != (Vec3{0, 0, 1}) {
		t.Errorf("X cross Y = %v, want Z", got)
	}
	if got := (Vec3{3, 4, 0}).Length(); got != 5 {
		t.Errorf("Length = %v, want 5", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize = %v", got)
	}
	if got := a.Lerp(b, 0.5); got != (Vec3{2.5, 3.5, 4.5}) {
		t.Errorf("Lerp = %v", got)
	}
	if got := Vec3FromArray(a.Array()); got != a {
		t.Errorf("array round trip = %v", got)
	}
}
