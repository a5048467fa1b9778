// Package picking provides ray casting against mesh bounds.
package picking

import (
	gomath "math"

	"github.com/MrShreyas/car/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    [3]float32
	Direction [3]float32 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates with the origin at the top left,
// viewportW/H are viewport dimensions.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, view, projection math.Mat4) Ray {
	invViewProj := projection.Mul(view).Inverse()

	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH

	near := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1.0, 1.0})
	far := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1.0, 1.0})

	dir := far.Sub(near)
	if dir.Length() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: near.Array(), Direction: dir.Array()}
}

func unproject(inv math.Mat4, clip math.Vec4) math.Vec3 {
	p := inv.MulVec4(clip)
	if p[3] != 0 {
		p[0] /= p[3]
		p[1] /= p[3]
		p[2] /= p[3]
	}
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o) / d
		t2 := (box.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// NewAABB creates an AABB from two opposite corners in any order.
func NewAABB(a, b [3]float32) AABB {
	var box AABB
	for i := 0; i < 3; i++ {
		box.Min[i] = min(a[i], b[i])
		box.Max[i] = max(a[i], b[i])
	}
	return box
}

// TransformAABB returns the world-space box enclosing a local box after
// world is applied to all eight corners.
func TransformAABB(minB, maxB [3]float32, world math.Mat4) AABB {
	box := AABB{
		Min: [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max: [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}
	for c := 0; c < 8; c++ {
		corner := [3]float32{minB[0], minB[1], minB[2]}
		if c&1 != 0 {
			corner[0] = maxB[0]
		}
		if c&2 != 0 {
			corner[1] = maxB[1]
		}
		if c&4 != 0 {
			corner[2] = maxB[2]
		}
		p := world.TransformPoint(corner)
		for i := 0; i < 3; i++ {
			box.Min[i] = min(box.Min[i], p[i])
			box.Max[i] = max(box.Max[i], p[i])
		}
	}
	return box
}

// Closest returns the index of the nearest box hit by the ray, or -1.
func (r Ray) Closest(boxes []AABB) int {
	best, bestT := -1, float32(gomath.MaxFloat32)
	for i, b := range boxes {
		if t, hit := r.IntersectAABB(b); hit && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}
