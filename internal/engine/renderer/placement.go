package renderer

import "github.com/MrShreyas/car/pkg/math"

// MaxSceneDiagonal is the bounds diagonal past which models are scaled
// down to fit.
const MaxSceneDiagonal = 200

// FitScale returns the uniform scale that brings a model with the given
// bounds diagonal within MaxSceneDiagonal, 1 for models already inside it.
func FitScale(diag float32) float32 {
	if diag > MaxSceneDiagonal {
		return MaxSceneDiagonal / diag
	}
	return 1
}

// PlaceModel returns a world matrix that moves the bounds center to the
// origin, scales, then translates to worldPos.
func PlaceModel(minB, maxB, worldPos math.Vec3, scale float32) math.Mat4 {
	center := minB.Add(maxB).Scale(0.5)
	return math.Translate(worldPos.X, worldPos.Y, worldPos.Z).
		Mul(math.Scale(scale, scale, scale)).
		Mul(math.Translate(-center.X, -center.Y, -center.Z))
}

// GroundModel places a model so its top sits at the origin, scaled down
// when oversized.
func GroundModel(minB, maxB math.Vec3) math.Mat4 {
	size := maxB.Sub(minB)
	return PlaceModel(minB, maxB, math.Vec3{Y: -size.Y * 0.5}, FitScale(size.Length()))
}

// Offset is a runtime translation applied in world space on top of a
// placement, such as a model moved with the arrow keys.
type Offset struct {
	math.Vec3
	Step float32
}

// Nudge moves the offset by whole steps along each axis.
func (o *Offset) Nudge(dx, dy, dz float32) {
	step := o.Step
	if step == 0 {
		step = 0.05
	}
	o.Vec3 = o.Vec3.Add(math.Vec3{X: dx * step, Y: dy * step, Z: dz * step})
}

// Reset returns the offset to the origin.
func (o *Offset) Reset() {
	o.Vec3 = math.Vec3{}
}

// Apply left-multiplies the offset onto a world matrix.
func (o Offset) Apply(world math.Mat4) math.Mat4 {
	return math.Translate(o.X, o.Y, o.Z).Mul(world)
}
