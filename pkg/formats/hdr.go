// Package formats provides decoders for environment image file formats.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// HDR format errors.
var (
	ErrInvalidHDRMagic      = errors.New("invalid HDR magic: expected '#?RADIANCE' or '#?RGBE'")
	ErrUnsupportedHDRFormat = errors.New("unsupported HDR pixel format")
	ErrInvalidHDRResolution = errors.New("invalid HDR resolution line")
	ErrTruncatedHDRData     = errors.New("truncated HDR data")
)

// hdrMaxHeaderLines bounds the header scan for malformed files.
const hdrMaxHeaderLines = 64

// HDR is a decoded Radiance RGBE image with linear float RGB pixels.
// Rows are stored top to bottom as they appear in the file.
type HDR struct {
	Width    int
	Height   int
	Exposure float32   // EXPOSURE header value, 1 when absent
	Pixels   []float32 // RGB, 3 floats per pixel
}

// HDRStats summarises the luminance of an HDR image.
type HDRStats struct {
	MinLuminance  float32
	MaxLuminance  float32
	MeanLuminance float32
}

// ParseHDR decodes a Radiance .hdr file from raw bytes.
// Supports flat, old-style run-length and adaptive (new-style) RLE scanlines.
func ParseHDR(data []byte) (*HDR, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	magic, err := readHeaderLine(r)
	if err != nil {
		return nil, ErrTruncatedHDRData
	}
	if magic != "#?RADIANCE" && magic != "#?RGBE" {
		return nil, ErrInvalidHDRMagic
	}

	img := &HDR{Exposure: 1}

	for i := 0; ; i++ {
		if i >= hdrMaxHeaderLines {
			return nil, fmt.Errorf("%w: header not terminated", ErrTruncatedHDRData)
		}
		line, err := readHeaderLine(r)
		if err != nil {
			return nil, ErrTruncatedHDRData
		}
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "FORMAT":
			if value != "32-bit_rle_rgbe" {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedHDRFormat, value)
			}
		case "EXPOSURE":
			if v, err := strconv.ParseFloat(strings.TrimSpace(value), 32); err == nil && v > 0 {
				img.Exposure *= float32(v)
			}
		}
	}

	resLine, err := readHeaderLine(r)
	if err != nil {
		return nil, ErrTruncatedHDRData
	}
	flipY, err := img.parseResolution(resLine)
	if err != nil {
		return nil, err
	}

	img.Pixels = make([]float32, img.Width*img.Height*3)
	scanline := make([]byte, img.Width*4)

	for y := 0; y < img.Height; y++ {
		if err := readScanline(r, scanline, img.Width); err != nil {
			return nil, fmt.Errorf("scanline %d: %w", y, err)
		}
		row := y
		if flipY {
			row = img.Height - 1 - y
		}
		dst := img.Pixels[row*img.Width*3 : (row+1)*img.Width*3]
		for x := 0; x < img.Width; x++ {
			rgbeToFloat(scanline[x*4:x*4+4], dst[x*3:x*3+3])
		}
	}

	return img, nil
}

// LoadHDR reads and decodes a Radiance .hdr file from disk.
func LoadHDR(path string) (*HDR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading HDR file: %w", err)
	}
	return ParseHDR(data)
}

// At returns the RGB value at pixel (x, y).
func (h *HDR) At(x, y int) [3]float32 {
	i := (y*h.Width + x) * 3
	return [3]float32{h.Pixels[i], h.Pixels[i+1], h.Pixels[i+2]}
}

// FlippedRows returns a copy of the pixel data with rows in bottom-to-top
// order, which is the row order OpenGL expects for TexImage2D.
func (h *HDR) FlippedRows() []float32 {
	out := make([]float32, len(h.Pixels))
	stride := h.Width * 3
	for y := 0; y < h.Height; y++ {
		src := h.Pixels[y*stride : (y+1)*stride]
		copy(out[(h.Height-1-y)*stride:], src)
	}
	return out
}

// Stats computes luminance statistics (Rec. 709 weights).
func (h *HDR) Stats() HDRStats {
	if len(h.Pixels) == 0 {
		return HDRStats{}
	}
	s := HDRStats{MinLuminance: math.MaxFloat32}
	var sum float64
	for i := 0; i+2 < len(h.Pixels); i += 3 {
		l := 0.2126*h.Pixels[i] + 0.7152*h.Pixels[i+1] + 0.0722*h.Pixels[i+2]
		s.MinLuminance = min(s.MinLuminance, l)
		s.MaxLuminance = max(s.MaxLuminance, l)
		sum += float64(l)
	}
	s.MeanLuminance = float32(sum / float64(len(h.Pixels)/3))
	return s
}

// parseResolution handles the standard "-Y H +X W" orientation and its
// vertically flipped "+Y H +X W" variant.
func (h *HDR) parseResolution(line string) (flipY bool, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[2] != "+X" {
		return false, fmt.Errorf("%w: %q", ErrInvalidHDRResolution, line)
	}
	switch fields[0] {
	case "-Y":
	case "+Y":
		flipY = true
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidHDRResolution, line)
	}

	height, err1 := strconv.Atoi(fields[1])
	width, err2 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return false, fmt.Errorf("%w: %q", ErrInvalidHDRResolution, line)
	}
	h.Width = width
	h.Height = height
	return flipY, nil
}

func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readScanline reads one scanline of RGBE quadruples into dst.
func readScanline(r *bufio.Reader, dst []byte, width int) error {
	if width < 8 || width > 0x7fff {
		return readFlatScanline(r, dst, width)
	}

	head, err := r.Peek(4)
	if err != nil {
		return ErrTruncatedHDRData
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		return readFlatScanline(r, dst, width)
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("%w: scanline width mismatch", ErrUnsupportedHDRFormat)
	}
	if _, err := r.Discard(4); err != nil {
		return ErrTruncatedHDRData
	}

	// Adaptive RLE: each of the four components is encoded separately.
	for c := 0; c < 4; c++ {
		for x := 0; x < width; {
			count, err := r.ReadByte()
			if err != nil {
				return ErrTruncatedHDRData
			}
			if count > 128 {
				run := int(count) - 128
				if x+run > width {
					return fmt.Errorf("%w: run overflows scanline", ErrTruncatedHDRData)
				}
				value, err := r.ReadByte()
				if err != nil {
					return ErrTruncatedHDRData
				}
				for i := 0; i < run; i++ {
					dst[(x+i)*4+c] = value
				}
				x += run
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return fmt.Errorf("%w: bad literal run", ErrTruncatedHDRData)
			}
			for i := 0; i < n; i++ {
				value, err := r.ReadByte()
				if err != nil {
					return ErrTruncatedHDRData
				}
				dst[(x+i)*4+c] = value
			}
			x += n
		}
	}
	return nil
}

// readFlatScanline reads uncompressed pixels, expanding old-style
// (1,1,1,n) repeat markers.
func readFlatScanline(r *bufio.Reader, dst []byte, width int) error {
	var px [4]byte
	shift := 0
	for x := 0; x < width; {
		if _, err := io.ReadFull(r, px[:]); err != nil {
			return ErrTruncatedHDRData
		}
		if px[0] == 1 && px[1] == 1 && px[2] == 1 {
			if x == 0 {
				return fmt.Errorf("%w: repeat marker at scanline start", ErrUnsupportedHDRFormat)
			}
			run := int(px[3]) << shift
			if x+run > width {
				return fmt.Errorf("%w: run overflows scanline", ErrTruncatedHDRData)
			}
			prev := dst[(x-1)*4 : x*4]
			for i := 0; i < run; i++ {
				copy(dst[(x+i)*4:], prev)
			}
			x += run
			shift += 8
			continue
		}
		copy(dst[x*4:], px[:])
		x++
		shift = 0
	}
	return nil
}

// rgbeToFloat converts one shared-exponent pixel to linear RGB.
func rgbeToFloat(rgbe []byte, dst []float32) {
	if rgbe[3] == 0 {
		dst[0], dst[1], dst[2] = 0, 0, 0
		return
	}
	f := float32(math.Ldexp(1, int(rgbe[3])-(128+8)))
	dst[0] = float32(rgbe[0]) * f
	dst[1] = float32(rgbe[1]) * f
	dst[2] = float32(rgbe[2]) * f
}
