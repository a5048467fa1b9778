package picking

import (
	gomath "math"
	"testing"

	"github.com/MrShreyas/car/pkg/math"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestScreenToRay_Center(t *testing.T) {
	view := math.LookAt(math.Vec3{Z: 5}, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(gomath.Pi/4, 1, 0.1, 100)

	r := ScreenToRay(50, 50, 100, 100, view, proj)
	if abs(r.Direction[0]) > 1e-3 || abs(r.Direction[1]) > 1e-3 || abs(r.Direction[2]+1) > 1e-3 {
		t.Errorf("Direction = %v, want (0, 0, -1)", r.Direction)
	}
	if abs(r.Origin[2]-4.9) > 1e-2 {
		t.Errorf("Origin.z = %f, want near plane at 4.9", r.Origin[2])
	}

	// Top of the screen points upward.
	up := ScreenToRay(50, 0, 100, 100, view, proj)
	if up.Direction[1] <= 0 {
		t.Errorf("top-edge ray Direction.y = %f, want > 0", up.Direction[1])
	}
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB([3]float32{1, 1, 1}, [3]float32{-1, -1, -1})
	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"front", Ray{Origin: [3]float32{0, 0, 5}, Direction: [3]float32{0, 0, -1}}, true, 4},
		{"miss", Ray{Origin: [3]float32{3, 0, 5}, Direction: [3]float32{0, 0, -1}}, false, 0},
		{"behind", Ray{Origin: [3]float32{0, 0, 5}, Direction: [3]float32{0, 0, 1}}, false, 0},
		{"inside", Ray{Origin: [3]float32{0, 0, 0}, Direction: [3]float32{1, 0, 0}}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && abs(got-tt.wantT) > 1e-5 {
				t.Errorf("t = %f, want %f", got, tt.wantT)
			}
		})
	}
}

func TestTransformAABB(t *testing.T) {
	world := math.Translate(10, 0, 0).Mul(math.Scale(2, 2, 2))
	box := TransformAABB([3]float32{-1, 0, -1}, [3]float32{1, 1, 1}, world)
	want := AABB{Min: [3]float32{8, 0, -2}, Max: [3]float32{12, 2, 2}}
	for i := 0; i < 3; i++ {
		if abs(box.Min[i]-want.Min[i]) > 1e-5 || abs(box.Max[i]-want.Max[i]) > 1e-5 {
			t.Fatalf("TransformAABB = %+v, want %+v", box, want)
		}
	}
}

func TestClosest(t *testing.T) {
	r := Ray{Origin: [3]float32{0, 0, 10}, Direction: [3]float32{0, 0, -1}}
	boxes := []AABB{
		NewAABB([3]float32{-1, -1, -1}, [3]float32{1, 1, 1}),
		NewAABB([3]float32{-1, -1, 3}, [3]float32{1, 1, 4}),
		NewAABB([3]float32{5, 5, 5}, [3]float32{6, 6, 6}),
	}
	if got := r.Closest(boxes); got != 1 {
		t.Errorf("Closest = %d, want 1", got)
	}
	if got := r.Closest(boxes[2:]); got != -1 {
		t.Errorf("Closest(miss) = %d, want -1", got)
	}
}
