package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestInput_HeldState(t *testing.T) {
	in := New()
	in.Apply(Event{Type: EventKeyDown, Key: sdl.SCANCODE_W})
	in.Apply(Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT})

	if !in.IsKeyPressed(sdl.SCANCODE_W) || !in.IsKeyDown(sdl.SCANCODE_W) {
		t.Error("W should be pressed and held")
	}

	in.Reset()
	if in.IsKeyPressed(sdl.SCANCODE_W) {
		t.Error("press should not survive Reset")
	}
	if !in.IsKeyDown(sdl.SCANCODE_W) || !in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Error("held state should survive Reset")
	}

	in.Apply(Event{Type: EventKeyUp, Key: sdl.SCANCODE_W})
	in.Apply(Event{Type: EventMouseUp, Button: sdl.BUTTON_LEFT})
	if in.IsKeyDown(sdl.SCANCODE_W) || in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Error("released key and button still held")
	}
}

func TestInput_Drag(t *testing.T) {
	in := New()
	in.Apply(Event{Type: EventMouseMove, DeltaX: 4, DeltaY: 1})
	if dx, dy := in.Drag(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
		t.Errorf("drag without button = (%d, %d)", dx, dy)
	}

	in.Apply(Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT})
	in.Apply(Event{Type: EventMouseMove, DeltaX: -2, DeltaY: 3})
	if dx, dy := in.Drag(sdl.BUTTON_LEFT); dx != 2 || dy != 4 {
		t.Errorf("drag = (%d, %d), want (2, 4)", dx, dy)
	}
}

func TestInput_WheelAndDrop(t *testing.T) {
	in := New()
	in.Apply(Event{Type: EventMouseWheel, Wheel: 1})
	in.Apply(Event{Type: EventMouseWheel, Wheel: 0.5})
	in.Apply(Event{Type: EventDropFile, Path: "a.gltf"})
	in.Apply(Event{Type: EventDropFile, Path: "b.glb"})

	if w := in.Wheel(); w != 1.5 {
		t.Errorf("Wheel = %v, want 1.5", w)
	}
	if p, ok := in.DroppedFile(); !ok || p != "b.glb" {
		t.Errorf("DroppedFile = %q, %v", p, ok)
	}

	in.Reset()
	if _, ok := in.DroppedFile(); ok {
		t.Error("drop survived Reset")
	}
}
