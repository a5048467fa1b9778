package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

var (
	// ErrEmbeddedNotFound is returned for an embedded reference with no image data.
	ErrEmbeddedNotFound = errors.New("embedded image not found")
	errInvalidPixels    = errors.New("decoder returned invalid pixel data")
)

// Pixels is a decoded image: tightly packed rows, top row first.
type Pixels struct {
	Width    int
	Height   int
	Channels int // 1, 3 or 4
	Data     []byte
}

// Decoder turns a texture path into pixels.
type Decoder interface {
	Decode(path string) (*Pixels, error)
}

// FileDecoder reads images from disk. PNG, JPEG, GIF, BMP, TIFF, WebP and
// TGA are supported.
type FileDecoder struct{}

// Decode reads and decodes the file at path.
func (FileDecoder) Decode(path string) (*Pixels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data, path)
}

// EmbeddedDecoder serves "*N" references from in-memory image data and
// defers everything else to Next.
type EmbeddedDecoder struct {
	Images map[string][]byte
	Next   Decoder
}

// Decode implements Decoder.
func (d EmbeddedDecoder) Decode(path string) (*Pixels, error) {
	if IsEmbedded(path) {
		data, ok := d.Images[path]
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrEmbeddedNotFound)
		}
		return DecodeBytes(data, path)
	}
	if d.Next == nil {
		return FileDecoder{}.Decode(path)
	}
	return d.Next.Decode(path)
}

// DirDecoder resolves texture paths against a model directory as
// Dir + "/" + path. Embedded references and absolute paths pass through
// unchanged.
type DirDecoder struct {
	Dir  string
	Next Decoder
}

// Decode implements Decoder.
func (d DirDecoder) Decode(path string) (*Pixels, error) {
	next := d.Next
	if next == nil {
		next = FileDecoder{}
	}
	return next.Decode(d.Join(path))
}

// Join returns the path the decoder reads for a texture reference.
func (d DirDecoder) Join(path string) string {
	if d.Dir == "" || IsEmbedded(path) || filepath.IsAbs(path) {
		return path
	}
	return d.Dir + "/" + path
}

// IsEmbedded reports whether path addresses an embedded image ("*N").
func IsEmbedded(path string) bool {
	return strings.HasPrefix(path, "*")
}

// EmbeddedKey returns the reference for embedded image n.
func EmbeddedKey(n int) string {
	return fmt.Sprintf("*%d", n)
}

// DecodeBytes decodes encoded image data. name is used to pick the TGA
// decoder, which has no magic number.
func DecodeBytes(data []byte, name string) (*Pixels, error) {
	var img image.Image
	var err error
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return FromImage(img), nil
}

// FromImage converts an image to packed pixels. Grayscale images keep one
// channel, opaque images three, everything else four (non-premultiplied).
func FromImage(img image.Image) *Pixels {
	b := img.Bounds()
	p := &Pixels{Width: b.Dx(), Height: b.Dy(), Channels: channelsOf(img)}
	p.Data = make([]byte, 0, p.Width*p.Height*p.Channels)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.At(x, y)
			switch p.Channels {
			case 1:
				g := color.GrayModel.Convert(c).(color.Gray)
				p.Data = append(p.Data, g.Y)
			case 3:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				p.Data = append(p.Data, n.R, n.G, n.B)
			default:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				p.Data = append(p.Data, n.R, n.G, n.B, n.A)
			}
		}
	}
	return p
}

func channelsOf(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}
