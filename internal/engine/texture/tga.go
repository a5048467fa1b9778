package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes a TGA image.
// Supports uncompressed (type 2) and RLE compressed (type 10) true-color
// images at 24 or 32 bits per pixel. 24-bit images decode as opaque.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := tgaDecoder{
		img:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		data:   data[offset:],
		bpp:    bpp / 8,
		width:  width,
		height: height,
		// Bit 5 of the descriptor marks top-to-bottom row order.
		topDown: descriptor&0x20 != 0,
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = d.decodeRaw()
	} else {
		err = d.decodeRLE()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img     *image.NRGBA
	data    []byte
	pos     int
	bpp     int
	width   int
	height  int
	topDown bool
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() (color.NRGBA, bool) {
	if d.pos+d.bpp > len(d.data) {
		return color.NRGBA{}, false
	}
	p := d.data[d.pos:]
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	d.pos += d.bpp
	return c, true
}

func (d *tgaDecoder) set(i int, c color.NRGBA) {
	x := i % d.width
	y := i / d.width
	if !d.topDown {
		y = d.height - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	if len(d.data) < d.width*d.height*d.bpp {
		return errTGATruncated
	}
	for i := 0; i < d.width*d.height; i++ {
		c, _ := d.next()
		d.set(i, c)
	}
	return nil
}

// decodeRLE stops quietly at the end of the data; missing pixels stay transparent black.
func (d *tgaDecoder) decodeRLE() error {
	total := d.width * d.height
	i := 0
	for i < total && d.pos < len(d.data) {
		packet := d.data[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, ok := d.next()
			if !ok {
				break
			}
			for n := 0; n < count && i < total; n++ {
				d.set(i, c)
				i++
			}
			continue
		}

		for n := 0; n < count && i < total; n++ {
			c, ok := d.next()
			if !ok {
				return nil
			}
			d.set(i, c)
			i++
		}
	}
	return nil
}
