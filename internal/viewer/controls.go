package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/MrShreyas/car/internal/engine/renderer"
	"github.com/MrShreyas/car/pkg/math"
)

// MoveSpeed is how far the model moves per second while an arrow key is held.
const MoveSpeed = 3.0

// Keys is the keyboard state the controls read each frame.
type Keys interface {
	IsKeyDown(sdl.Scancode) bool
	IsKeyPressed(sdl.Scancode) bool
}

// Controls maps held keys onto camera panning and the model offset.
//
// WASD always pans the camera. The arrow keys and PageUp/PageDown pan the
// camera too, unless ModelMode is on, in which case they move the model
// offset (when not Locked). M toggles ModelMode, L toggles Locked, R returns
// the offset to Home and B toggles the bounds overlay.
type Controls struct {
	ModelMode  bool
	Locked     bool
	ShowBounds bool
	Home       math.Vec3
	Offset     renderer.Offset
}

// Pan is camera movement requested for one frame, in HandleMovement units.
type Pan struct {
	Forward, Right, Up float32
}

// IsZero reports whether the pan moves nothing.
func (p Pan) IsZero() bool {
	return p.Forward == 0 && p.Right == 0 && p.Up == 0
}

// axis returns +1, -1 or 0 for a pair of opposing keys.
func axis(k Keys, pos, neg sdl.Scancode) float32 {
	var v float32
	if k.IsKeyDown(pos) {
		v++
	}
	if k.IsKeyDown(neg) {
		v--
	}
	return v
}

// Update applies one frame of input and returns the camera pan.
func (c *Controls) Update(k Keys, dt float32) Pan {
	if k.IsKeyPressed(sdl.SCANCODE_M) {
		c.ModelMode = !c.ModelMode
	}
	if k.IsKeyPressed(sdl.SCANCODE_L) {
		c.Locked = !c.Locked
	}
	if k.IsKeyPressed(sdl.SCANCODE_B) {
		c.ShowBounds = !c.ShowBounds
	}
	if k.IsKeyPressed(sdl.SCANCODE_R) {
		c.Offset.Vec3 = c.Home
	}

	pan := Pan{
		Forward: axis(k, sdl.SCANCODE_W, sdl.SCANCODE_S),
		Right:   axis(k, sdl.SCANCODE_D, sdl.SCANCODE_A),
	}

	fwd := axis(k, sdl.SCANCODE_UP, sdl.SCANCODE_DOWN)
	right := axis(k, sdl.SCANCODE_RIGHT, sdl.SCANCODE_LEFT)
	up := axis(k, sdl.SCANCODE_PAGEUP, sdl.SCANCODE_PAGEDOWN)

	if !c.ModelMode {
		pan.Forward += fwd
		pan.Right += right
		pan.Up += up
		return pan
	}
	if !c.Locked {
		c.Offset.Step = MoveSpeed * dt
		c.Offset.Nudge(right, up, -fwd)
	}
	return pan
}

// Place applies the model offset to a placement's world matrix.
func (c *Controls) Place(world math.Mat4) math.Mat4 {
	return c.Offset.Apply(world)
}
