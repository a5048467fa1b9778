package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// buildHDR assembles a Radiance file around an already encoded pixel payload.
func buildHDR(resolution string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("#?RADIANCE\n")
	buf.WriteString("# synthetic test image\n")
	buf.WriteString("FORMAT=32-bit_rle_rgbe\n")
	buf.WriteString("EXPOSURE=2.0\n")
	buf.WriteString("\n")
	buf.WriteString(resolution + "\n")
	buf.Write(payload)
	return buf.Bytes()
}

func TestParseHDR_InvalidMagic(t *testing.T) {
	_, err := ParseHDR([]byte("P6\n2 2\n255\n"))
	if err != ErrInvalidHDRMagic {
		t.Errorf("expected ErrInvalidHDRMagic, got %v", err)
	}
}

func TestParseHDR_TruncatedHeader(t *testing.T) {
	_, err := ParseHDR([]byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n"))
	if !errors.Is(err, ErrTruncatedHDRData) {
		t.Errorf("expected ErrTruncatedHDRData, got %v", err)
	}
}

func TestParseHDR_UnsupportedFormat(t *testing.T) {
	data := []byte("#?RADIANCE\nFORMAT=32-bit_rle_xyze\n\n-Y 1 +X 1\n\x80\x80\x80\x81")
	_, err := ParseHDR(data)
	if !errors.Is(err, ErrUnsupportedHDRFormat) {
		t.Errorf("expected ErrUnsupportedHDRFormat, got %v", err)
	}
}

func TestParseHDR_InvalidResolution(t *testing.T) {
	tests := []string{
		"-X 2 +Y 2",
		"-Y two +X 2",
		"-Y 0 +X 2",
		"-Y 2",
	}
	for _, res := range tests {
		t.Run(res, func(t *testing.T) {
			_, err := ParseHDR(buildHDR(res, nil))
			if !errors.Is(err, ErrInvalidHDRResolution) {
				t.Errorf("expected ErrInvalidHDRResolution, got %v", err)
			}
		})
	}
}

func TestParseHDR_Flat(t *testing.T) {
	payload := []byte{
		128, 64, 32, 129, // (1, 0.5, 0.25)
		0, 0, 0, 0, // black
		128, 128, 128, 130, // (2, 2, 2)
		255, 0, 0, 128, // (~0.996, 0, 0)
	}
	img, err := ParseHDR(buildHDR("-Y 2 +X 2", payload))
	if err != nil {
		t.Fatalf("ParseHDR failed: %v", err)
	}

	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("expected 2x2, got %dx%d", img.Width, img.Height)
	}
	if img.Exposure != 2 {
		t.Errorf("expected exposure 2, got %f", img.Exposure)
	}

	tests := []struct {
		x, y int
		want [3]float32
	}{
		{0, 0, [3]float32{1, 0.5, 0.25}},
		{1, 0, [3]float32{0, 0, 0}},
		{0, 1, [3]float32{2, 2, 2}},
		{1, 1, [3]float32{255.0 / 256.0, 0, 0}},
	}
	for _, tt := range tests {
		got := img.At(tt.x, tt.y)
		if got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestParseHDR_FlippedOrientation(t *testing.T) {
	payload := []byte{
		128, 64, 32, 129, // first scanline is the bottom row
		0, 0, 0, 0,
	}
	img, err := ParseHDR(buildHDR("+Y 2 +X 1", payload))
	if err != nil {
		t.Fatalf("ParseHDR failed: %v", err)
	}
	if got := img.At(0, 1); got != [3]float32{1, 0.5, 0.25} {
		t.Errorf("bottom row = %v, want (1, 0.5, 0.25)", got)
	}
	if got := img.At(0, 0); got != [3]float32{} {
		t.Errorf("top row = %v, want black", got)
	}
}

func TestParseHDR_AdaptiveRLE(t *testing.T) {
	const width = 8
	var payload []byte
	payload = append(payload, 2, 2, 0, width)
	// R: run of 8 x 128
	payload = append(payload, 128+8, 128)
	// G: literal 8 values
	payload = append(payload, 8, 0, 16, 32, 48, 64, 80, 96, 112)
	// B: run 4 x 0, run 4 x 64
	payload = append(payload, 128+4, 0, 128+4, 64)
	// E: run of 8 x 129
	payload = append(payload, 128+8, 129)

	img, err := ParseHDR(buildHDR("-Y 1 +X 8", payload))
	if err != nil {
		t.Fatalf("ParseHDR failed: %v", err)
	}

	for x := 0; x < width; x++ {
		px := img.At(x, 0)
		if px[0] != 1 {
			t.Errorf("x=%d: red = %f, want 1", x, px[0])
		}
		if want := float32(x*16) / 128; px[1] != want {
			t.Errorf("x=%d: green = %f, want %f", x, px[1], want)
		}
		wantB := float32(0)
		if x >= 4 {
			wantB = 0.5
		}
		if px[2] != wantB {
			t.Errorf("x=%d: blue = %f, want %f", x, px[2], wantB)
		}
	}
}

func TestParseHDR_OldStyleRepeat(t *testing.T) {
	payload := []byte{
		128, 128, 128, 129, // (1,1,1)
		1, 1, 1, 2, // repeat previous twice
	}
	img, err := ParseHDR(buildHDR("-Y 1 +X 3", payload))
	if err != nil {
		t.Fatalf("ParseHDR failed: %v", err)
	}
	for x := 0; x < 3; x++ {
		if got := img.At(x, 0); got != [3]float32{1, 1, 1} {
			t.Errorf("x=%d: got %v, want (1,1,1)", x, got)
		}
	}
}

func TestParseHDR_TruncatedPixels(t *testing.T) {
	_, err := ParseHDR(buildHDR("-Y 2 +X 2", []byte{128, 64, 32, 129}))
	if !errors.Is(err, ErrTruncatedHDRData) {
		t.Errorf("expected ErrTruncatedHDRData, got %v", err)
	}
}

func TestHDR_FlippedRows(t *testing.T) {
	img := &HDR{Width: 1, Height: 2, Pixels: []float32{1, 2, 3, 4, 5, 6}}
	got := img.FlippedRows()
	want := []float32{4, 5, 6, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FlippedRows = %v, want %v", got, want)
		}
	}
}

func TestHDR_Stats(t *testing.T) {
	img := &HDR{Width: 2, Height: 1, Pixels: []float32{0, 0, 0, 1, 1, 1}}
	s := img.Stats()
	if s.MinLuminance != 0 {
		t.Errorf("min = %f, want 0", s.MinLuminance)
	}
	if abs32(s.MaxLuminance-1) > 1e-6 {
		t.Errorf("max = %f, want 1", s.MaxLuminance)
	}
	if abs32(s.MeanLuminance-0.5) > 1e-6 {
		t.Errorf("mean = %f, want 0.5", s.MeanLuminance)
	}
}

func TestLoadHDR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.hdr")
	if err := os.WriteFile(path, buildHDR("-Y 1 +X 1", []byte{128, 128, 128, 129}), 0644); err != nil {
		t.Fatal(err)
	}
	img, err := LoadHDR(path)
	if err != nil {
		t.Fatalf("LoadHDR failed: %v", err)
	}
	if img.Width != 1 || img.Height != 1 {
		t.Errorf("expected 1x1, got %dx%d", img.Width, img.Height)
	}

	if _, err := LoadHDR(filepath.Join(t.TempDir(), "missing.hdr")); err == nil {
		t.Error("expected error for missing file")
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
