package environment

import (
	gomath "math"
	"math/bits"

	"github.com/MrShreyas/car/pkg/formats"
	"github.com/MrShreyas/car/pkg/math"
)

// Cubemap faces in GL order: +X, -X, +Y, -Y, +Z, -Z.
const FaceCount = 6

// Capture frustum shared by every cubemap pass.
const (
	CaptureFOV  = 90.0
	CaptureNear = 0.1
	CaptureFar  = 10.0
)

var (
	captureTargets = [FaceCount]math.Vec3{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	captureUps = [FaceCount]math.Vec3{
		{Y: -1}, {Y: -1}, {Z: 1}, {Z: -1}, {Y: -1}, {Y: -1},
	}
)

// CaptureProjection is the 90 degree square projection used to render
// each cubemap face.
func CaptureProjection() math.Mat4 {
	return math.Perspective(float32(CaptureFOV*gomath.Pi/180), 1, CaptureNear, CaptureFar)
}

// CaptureViews returns the view matrix for each face, looking out of the
// origin.
func CaptureViews() [FaceCount]math.Mat4 {
	var views [FaceCount]math.Mat4
	for i := range views {
		views[i] = math.LookAt(math.Vec3{}, captureTargets[i], captureUps[i])
	}
	return views
}

// FaceDirection returns the normalized world direction through the centre
// of texel (x, y) on a size x size face.
func FaceDirection(face, x, y, size int) math.Vec3 {
	u := 2*(float32(x)+0.5)/float32(size) - 1
	v := 2*(float32(y)+0.5)/float32(size) - 1

	var d math.Vec3
	switch face {
	case 0:
		d = math.Vec3{X: 1, Y: -v, Z: -u}
	case 1:
		d = math.Vec3{X: -1, Y: -v, Z: u}
	case 2:
		d = math.Vec3{X: u, Y: 1, Z: v}
	case 3:
		d = math.Vec3{X: u, Y: -1, Z: -v}
	case 4:
		d = math.Vec3{X: u, Y: -v, Z: 1}
	default:
		d = math.Vec3{X: -u, Y: -v, Z: -1}
	}
	return d.Normalize()
}

// Sky is the procedural gradient-plus-sun environment.
type Sky struct {
	SunDir       math.Vec3 // normalized
	SunPower     float32
	SunIntensity float32
}

var (
	skyHorizon = math.Vec3{X: 0.02, Y: 0.02, Z: 0.02}
	skyZenith  = math.Vec3{X: 0.6, Y: 0.7, Z: 0.9}
)

// DefaultSky returns the stock sky.
func DefaultSky() Sky {
	return Sky{
		SunDir:       math.Vec3{X: 0.5, Y: 0.8, Z: 0.3}.Normalize(),
		SunPower:     64,
		SunIntensity: 6,
	}
}

// Radiance returns the sky colour seen along dir (normalized).
func (s Sky) Radiance(dir math.Vec3) math.Vec3 {
	t := clamp01(dir.Y*0.5 + 0.5)
	c := skyHorizon.Lerp(skyZenith, t)
	sun := float32(gomath.Pow(float64(max(dir.Dot(s.SunDir), 0)), float64(s.SunPower))) * s.SunIntensity
	return c.Add(math.Vec3{X: sun, Y: sun, Z: sun})
}

// Faces renders the sky into six RGB float faces of size x size, rows in
// texel order.
func (s Sky) Faces(size int) [FaceCount][]float32 {
	var faces [FaceCount][]float32
	for f := range faces {
		data := make([]float32, size*size*3)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				c := s.Radiance(FaceDirection(f, x, y, size))
				i := (y*size + x) * 3
				data[i], data[i+1], data[i+2] = c.X, c.Y, c.Z
			}
		}
		faces[f] = data
	}
	return faces
}

// EquirectUV maps a direction to equirectangular texture coordinates.
func EquirectUV(dir math.Vec3) (u, v float32) {
	u = float32(gomath.Atan2(float64(dir.Z), float64(dir.X)))/(2*gomath.Pi) + 0.5
	v = float32(gomath.Asin(float64(clampUnit(dir.Y))))/gomath.Pi + 0.5
	return u, v
}

// SampleEquirect returns the nearest texel of an HDR panorama along dir.
// v = 0 is the bottom row.
func SampleEquirect(h *formats.HDR, dir math.Vec3) math.Vec3 {
	if h == nil || h.Width == 0 || h.Height == 0 {
		return math.Vec3{}
	}
	u, v := EquirectUV(dir)
	x := min(int(u*float32(h.Width)), h.Width-1)
	y := min(int((1-v)*float32(h.Height)), h.Height-1)
	return math.Vec3FromArray(h.At(max(x, 0), max(y, 0)))
}

// MipSize returns the edge length of a mip level, never below 1.
func MipSize(base, mip int) int {
	return max(base>>mip, 1)
}

// MipRoughness maps a prefilter mip to its roughness, 0 at the base
// level and 1 at the last.
func MipRoughness(mip, mips int) float32 {
	if mips <= 1 {
		return 0
	}
	return float32(mip) / float32(mips-1)
}

// Hammersley returns point i of an n-point low-discrepancy sequence.
func Hammersley(i, n uint32) (float32, float32) {
	return float32(i) / float32(n), float32(float64(bits.Reverse32(i)) * 2.3283064365386963e-10)
}

// ImportanceSampleGGX returns a half vector around n distributed by the
// GGX lobe for roughness.
func ImportanceSampleGGX(xi1, xi2 float32, n math.Vec3, roughness float32) math.Vec3 {
	a := float64(roughness * roughness)
	phi := 2 * gomath.Pi * float64(xi1)
	cosTheta := gomath.Sqrt((1 - float64(xi2)) / (1 + (a*a-1)*float64(xi2)))
	sinTheta := gomath.Sqrt(1 - cosTheta*cosTheta)

	h := math.Vec3{
		X: float32(gomath.Cos(phi) * sinTheta),
		Y: float32(gomath.Sin(phi) * sinTheta),
		Z: float32(cosTheta),
	}
	tangent, bitangent := basis(n)
	return tangent.Scale(h.X).Add(bitangent.Scale(h.Y)).Add(n.Scale(h.Z)).Normalize()
}

// GeometrySchlickGGX is the Schlick-GGX term with the IBL remapping
// k = roughness^2 / 2.
func GeometrySchlickGGX(nDotV, roughness float32) float32 {
	k := roughness * roughness / 2
	return nDotV / (nDotV*(1-k) + k)
}

// GeometrySmith combines the view and light shadowing terms.
func GeometrySmith(nDotV, nDotL, roughness float32) float32 {
	return GeometrySchlickGGX(nDotV, roughness) * GeometrySchlickGGX(nDotL, roughness)
}

// IntegrateBRDF returns the split-sum scale and bias for a view angle and
// roughness.
func IntegrateBRDF(nDotV, roughness float32, samples int) (scale, bias float32) {
	if samples <= 0 {
		return 0, 0
	}
	nDotV = max(nDotV, 1e-4)
	v := math.Vec3{X: float32(gomath.Sqrt(float64(1 - nDotV*nDotV))), Z: nDotV}
	n := math.Vec3{Z: 1}

	var a, b float64
	for i := 0; i < samples; i++ {
		x1, x2 := Hammersley(uint32(i), uint32(samples))
		h := ImportanceSampleGGX(x1, x2, n, roughness)
		l := h.Scale(2 * v.Dot(h)).Sub(v).Normalize()

		nDotL := max(l.Z, 0)
		nDotH := max(h.Z, 0)
		vDotH := max(v.Dot(h), 0)
		if nDotL <= 0 {
			continue
		}
		g := GeometrySmith(nDotV, nDotL, roughness)
		gVis := float64(g*vDotH) / float64(nDotH*nDotV)
		fc := gomath.Pow(float64(1-vDotH), 5)
		a += (1 - fc) * gVis
		b += fc * gVis
	}
	return float32(a / float64(samples)), float32(b / float64(samples))
}

// BRDFLUT integrates a size x size lookup table, two floats per texel.
// Columns run over n·v and rows over roughness, row 0 first.
func BRDFLUT(size, samples int) []float32 {
	out := make([]float32, size*size*2)
	for y := 0; y < size; y++ {
		roughness := (float32(y) + 0.5) / float32(size)
		for x := 0; x < size; x++ {
			nDotV := (float32(x) + 0.5) / float32(size)
			s, b := IntegrateBRDF(nDotV, roughness, samples)
			i := (y*size + x) * 2
			out[i], out[i+1] = s, b
		}
	}
	return out
}

// Irradiance convolves radiance over the hemisphere around n with a
// uniform angular step of delta radians.
func Irradiance(radiance func(math.Vec3) math.Vec3, n math.Vec3, delta float32) math.Vec3 {
	if delta <= 0 {
		delta = 0.025
	}
	right, up := basis(n)

	var sum math.Vec3
	count := 0
	for phi := 0.0; phi < 2*gomath.Pi; phi += float64(delta) {
		for theta := 0.0; theta < gomath.Pi/2; theta += float64(delta) {
			st, ct := gomath.Sincos(theta)
			sp, cp := gomath.Sincos(phi)
			dir := right.Scale(float32(st * cp)).
				Add(up.Scale(float32(st * sp))).
				Add(n.Scale(float32(ct)))
			sum = sum.Add(radiance(dir).Scale(float32(ct * st)))
			count++
		}
	}
	if count == 0 {
		return math.Vec3{}
	}
	return sum.Scale(gomath.Pi / float32(count))
}

// basis returns two unit vectors perpendicular to n and each other.
func basis(n math.Vec3) (tangent, bitangent math.Vec3) {
	up := math.Vec3{Z: 1}
	if abs32(n.Z) >= 0.999 {
		up = math.Vec3{X: 1}
	}
	tangent = up.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

func clampUnit(v float32) float32 {
	return min(max(v, -1), 1)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
