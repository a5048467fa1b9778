package environment

import (
	"image"
	"image/color"
	gomath "math"

	"github.com/MrShreyas/car/pkg/math"
)

// crossCells places each face on a 4x3 horizontal cross, in face order.
var crossCells = [FaceCount][2]int{
	{2, 1}, // +X
	{0, 1}, // -X
	{1, 0}, // +Y
	{1, 2}, // -Y
	{1, 1}, // +Z
	{3, 1}, // -Z
}

// ToneMap applies exposure, Reinhard and gamma 2.2, matching the PBR and
// skybox shaders.
func ToneMap(c math.Vec3, exposure float32) math.Vec3 {
	m := func(v float32) float32 {
		v *= exposure
		v = v / (1 + v)
		return float32(gomath.Pow(float64(clamp01(v)), 1/2.2))
	}
	return math.Vec3{X: m(c.X), Y: m(c.Y), Z: m(c.Z)}
}

func unorm16(v float32) uint16 {
	return uint16(clamp01(v)*65535 + 0.5)
}

// BRDFImage renders a lookup table from BRDFLUT as a 16-bit image with
// scale in red and bias in green. Roughness increases upward, so row 0 of
// the table is the bottom row of the image.
func BRDFImage(lut []float32, size int) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := (y*size + x) * 2
			img.SetRGBA64(x, size-1-y, color.RGBA64{
				R: unorm16(lut[i]),
				G: unorm16(lut[i+1]),
				A: 0xffff,
			})
		}
	}
	return img
}

// CrossImage lays six size x size RGB faces out as a tone-mapped 4x3
// horizontal cross. Cells without a face stay transparent.
func CrossImage(faces [FaceCount][]float32, size int, exposure float32) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, size*4, size*3))
	for f, cell := range crossCells {
		ox, oy := cell[0]*size, cell[1]*size
		data := faces[f]
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				i := (y*size + x) * 3
				c := ToneMap(math.Vec3{X: data[i], Y: data[i+1], Z: data[i+2]}, exposure)
				img.SetRGBA64(ox+x, oy+y, color.RGBA64{
					R: unorm16(c.X),
					G: unorm16(c.Y),
					B: unorm16(c.Z),
					A: 0xffff,
				})
			}
		}
	}
	return img
}
