package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestFromImageChannels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 200})

	opaque := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	opaque.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	translucent := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	translucent.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	tests := []struct {
		name     string
		img      image.Image
		channels int
		data     []byte
	}{
		{"gray", gray, 1, []byte{0, 200}},
		{"opaque", opaque, 3, []byte{10, 20, 30}},
		{"translucent", translucent, 4, []byte{10, 20, 30, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px := FromImage(tt.img)
			if px.Channels != tt.channels {
				t.Errorf("Channels = %d, want %d", px.Channels, tt.channels)
			}
			if !bytes.Equal(px.Data, tt.data) {
				t.Errorf("Data = %v, want %v", px.Data, tt.data)
			}
		})
	}
}

func TestFileDecoderPNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 100), G: uint8(y * 100), B: 7, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "albedo.png")
	if err := os.WriteFile(path, encodePNG(t, img), 0644); err != nil {
		t.Fatal(err)
	}

	px, err := FileDecoder{}.Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if px.Width != 2 || px.Height != 2 || px.Channels != 3 {
		t.Fatalf("got %dx%d x%d", px.Width, px.Height, px.Channels)
	}
	// Top row first: pixel (1,0) is R=100,G=0.
	if px.Data[3] != 100 || px.Data[4] != 0 {
		t.Errorf("unexpected pixel (1,0): %v", px.Data[3:6])
	}
}

func TestFileDecoderErrors(t *testing.T) {
	if _, err := (FileDecoder{}).Decode(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := (FileDecoder{}).Decode(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func tgaHeader(imageType byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGA(t *testing.T) {
	t.Run("uncompressed bottom-up", func(t *testing.T) {
		data := tgaHeader(TGATypeUncompressed, 1, 2, 24, 0)
		// Stored bottom row first, BGR.
		data = append(data, 3, 2, 1, 30, 20, 10)
		img, err := DecodeTGA(data)
		if err != nil {
			t.Fatalf("DecodeTGA: %v", err)
		}
		top := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
		if top != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
			t.Errorf("top pixel = %v", top)
		}
	})

	t.Run("rle top-down", func(t *testing.T) {
		data := tgaHeader(TGATypeRLE, 3, 1, 32, 0x20)
		// Repeat packet of 3 pixels.
		data = append(data, 0x82, 1, 2, 3, 4)
		img, err := DecodeTGA(data)
		if err != nil {
			t.Fatalf("DecodeTGA: %v", err)
		}
		for x := 0; x < 3; x++ {
			c := color.NRGBAModel.Convert(img.At(x, 0)).(color.NRGBA)
			if c != (color.NRGBA{R: 3, G: 2, B: 1, A: 4}) {
				t.Errorf("pixel %d = %v", x, c)
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		cases := map[string][]byte{
			"short":     {1, 2, 3},
			"colormap":  append([]byte{0, 1}, make([]byte, 16)...),
			"type":      tgaHeader(3, 1, 1, 24, 0),
			"depth":     tgaHeader(TGATypeUncompressed, 1, 1, 16, 0),
			"truncated": append(tgaHeader(TGATypeUncompressed, 2, 2, 24, 0), 1, 2, 3),
		}
		for name, data := range cases {
			if _, err := DecodeTGA(data); err == nil {
				t.Errorf("%s: expected error", name)
			}
		}
	})
}

func TestDecodeBytesTGAByExtension(t *testing.T) {
	data := append(tgaHeader(TGATypeUncompressed, 1, 1, 24, 0), 0, 0, 255)
	px, err := DecodeBytes(data, "textures/Red.TGA")
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if px.Channels != 3 || !bytes.Equal(px.Data, []byte{255, 0, 0}) {
		t.Errorf("got %d channels %v", px.Channels, px.Data)
	}
}

func TestEmbeddedDecoder(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: 9})

	fallback := &stubDecoder{pixels: map[string]*Pixels{
		"disk.png": {Width: 1, Height: 1, Channels: 1, Data: []byte{1}},
	}}
	d := EmbeddedDecoder{
		Images: map[string][]byte{EmbeddedKey(0): encodePNG(t, img)},
		Next:   fallback,
	}

	px, err := d.Decode("*0")
	if err != nil {
		t.Fatalf("embedded decode: %v", err)
	}
	if px.Channels != 1 || px.Data[0] != 9 {
		t.Errorf("embedded pixels = %+v", px)
	}

	if _, err := d.Decode("*3"); !errors.Is(err, ErrEmbeddedNotFound) {
		t.Errorf("expected ErrEmbeddedNotFound, got %v", err)
	}

	if _, err := d.Decode("disk.png"); err != nil {
		t.Errorf("fallback decode: %v", err)
	}
	if len(fallback.calls) != 1 || fallback.calls[0] != "disk.png" {
		t.Errorf("fallback calls = %v", fallback.calls)
	}
}

func TestIsEmbedded(t *testing.T) {
	if !IsEmbedded("*12") {
		t.Error("*12 should be embedded")
	}
	if IsEmbedded("dir/*12") {
		t.Error("dir/*12 should not be embedded")
	}
	if EmbeddedKey(7) != "*7" {
		t.Errorf("EmbeddedKey(7) = %q", EmbeddedKey(7))
	}
}

func TestDirDecoder(t *testing.T) {
	stub := &stubDecoder{pixels: map[string]*Pixels{
		"models/car/paint.png": rgba(1, 1),
		"*0":                   rgba(1, 1),
		"/abs/x.png":           rgba(1, 1),
	}}
	d := DirDecoder{Dir: "models/car", Next: stub}

	for _, path := range []string{"paint.png", "*0", "/abs/x.png"} {
		if _, err := d.Decode(path); err != nil {
			t.Errorf("Decode(%q): %v", path, err)
		}
	}
	want := []string{"models/car/paint.png", "*0", "/abs/x.png"}
	for i, p := range want {
		if stub.calls[i] != p {
			t.Errorf("call %d: expected %q, got %q", i, p, stub.calls[i])
		}
	}

	if got := (DirDecoder{}).Join("a.png"); got != "a.png" {
		t.Errorf("empty dir should not change path, got %q", got)
	}
}
