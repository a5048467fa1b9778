package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrShreyas/car/pkg/math"
)

func TestFlipRGBA(t *testing.T) {
	// 1x2: bottom row red, top row blue in GL order.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FlipRGBA(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("top = %v, want blue", got)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("bottom = %v, want red", got)
	}

	if _, err := FlipRGBA(pixels, 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "viewer")
	sc.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := sc.CaptureFromPixels(make([]byte, 2*2*4), 2, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if want := filepath.Join(dir, "viewer_2026-03-04_05-06-07.png"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding saved PNG: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestBoundsWireframe(t *testing.T) {
	minB := math.Vec3{X: -1, Y: 0, Z: -2}
	maxB := math.Vec3{X: 1, Y: 3, Z: 2}

	verts := BoundsWireframe(minB, maxB, math.Identity())
	if len(verts) != BBoxWireframeVertexCount*3 {
		t.Fatalf("len = %d, want %d", len(verts), BBoxWireframeVertexCount*3)
	}
	// Every edge is axis aligned: its endpoints differ in exactly one axis.
	for e := 0; e < 12; e++ {
		a, b := verts[e*6:e*6+3], verts[e*6+3:e*6+6]
		diff := 0
		for k := 0; k < 3; k++ {
			if a[k] != b[k] {
				diff++
			}
		}
		if diff != 1 {
			t.Errorf("edge %d: %v -> %v is not axis aligned", e, a, b)
		}
	}

	moved := BoundsWireframe(minB, maxB, math.Translate(10, 0, 0))
	if moved[0] != verts[0]+10 || moved[1] != verts[1] {
		t.Errorf("translated first vertex = %v, want x+10 of %v", moved[:3], verts[:3])
	}
}
