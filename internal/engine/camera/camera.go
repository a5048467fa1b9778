// Package camera provides the orbit camera used to inspect models.
package camera

import (
	gomath "math"

	"github.com/MrShreyas/car/pkg/math"
)

// Auto-frame limits.
const (
	// FarPlaneDiagonal is the bounds diagonal past which the far plane
	// grows to twice the diagonal.
	FarPlaneDiagonal = 90
	// MinFrameDistance keeps small models from filling the screen.
	MinFrameDistance = 5
)

// OrbitCamera looks at Target from a point on a sphere around it.
type OrbitCamera struct {
	Target   math.Vec3
	Distance float32
	Pitch    float32 // radians above the target's horizontal plane
	Yaw      float32 // radians around +Y, 0 looks down -Z

	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32

	DragSensitivity float32 // radians per pixel
	ZoomSensitivity float32 // fraction of the distance per wheel step

	// Projection
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32
}

// NewOrbitCamera returns a camera 5 units from the origin, slightly above
// it.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		Pitch:           0.17,
		MinDistance:     0.05,
		MaxDistance:     5000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             45,
		Near:            0.1,
		Far:             100,
	}
}

// Center returns the orbit target.
func (c *OrbitCamera) Center() math.Vec3 {
	return c.Target
}

// forward returns the unit vector from the camera towards the target.
func (c *OrbitCamera) forward() math.Vec3 {
	cp, sp := gomath.Cos(float64(c.Pitch)), gomath.Sin(float64(c.Pitch))
	cy, sy := gomath.Cos(float64(c.Yaw)), gomath.Sin(float64(c.Yaw))
	return math.Vec3{X: float32(-cp * sy), Y: float32(-sp), Z: float32(-cp * cy)}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.Target.Sub(c.forward().Scale(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for a viewport
// aspect ratio (width / height).
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FOV*gomath.Pi/180, aspect, c.Near, c.Far)
}

// HandleDrag orbits by a mouse delta in pixels.
func (c *OrbitCamera) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom moves towards the target by a wheel delta; each step covers a
// fixed fraction of the current distance.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the target in the ground plane relative to the view
// direction. Speed scales with distance.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01
	sy, cy := float32(gomath.Sin(float64(c.Yaw))), float32(gomath.Cos(float64(c.Yaw)))

	fwd := math.Vec3{X: -sy, Z: -cy}
	side := math.Vec3{X: cy, Z: -sy}
	move := fwd.Scale(forward).Add(side.Scale(right)).Add(math.Vec3{Y: up})
	c.Target = c.Target.Add(move.Scale(speed))
}

// FitToBounds frames an axis-aligned box: the camera sits on +Z of the box
// center at 0.8 diagonals (at least MinFrameDistance), raised by 0.3 of the
// box height, and the far plane follows FarPlane.
func (c *OrbitCamera) FitToBounds(minB, maxB math.Vec3) {
	size := maxB.Sub(minB)
	diag := size.Length()
	c.Target = minB.Add(maxB).Scale(0.5)

	back := max(diag*0.8, MinFrameDistance)
	lift := size.Y * 0.3
	c.Distance = float32(gomath.Hypot(float64(back), float64(lift)))
	c.Pitch = float32(gomath.Atan2(float64(lift), float64(back)))
	c.Yaw = 0

	c.MaxDistance = max(c.MaxDistance, c.Distance*4)
	c.Far = FarPlane(diag, c.Far)
}

// FarPlane returns the far clip distance for a scene whose bounds have the
// given diagonal: base for ordinary scenes, twice the diagonal past
// FarPlaneDiagonal.
func FarPlane(diag, base float32) float32 {
	if diag > FarPlaneDiagonal {
		return max(diag*2, base)
	}
	return base
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
