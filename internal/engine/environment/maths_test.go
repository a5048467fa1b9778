package environment

import (
	gomath "math"
	"testing"

	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/pkg/formats"
	"github.com/MrShreyas/car/pkg/math"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func nearVec(a, b math.Vec3, eps float32) bool {
	return abs(a.X-b.X) <= eps && abs(a.Y-b.Y) <= eps && abs(a.Z-b.Z) <= eps
}

func TestCaptureViews_LookDownEachAxis(t *testing.T) {
	views := CaptureViews()
	for face, target := range captureTargets {
		// Each face's target must land straight ahead, on -Z in view space.
		got := math.Vec3FromArray(views[face].TransformPoint(target.Array()))
		if !nearVec(got, math.Vec3{Z: -1}, 1e-5) {
			t.Errorf("face %d: target in view space = %+v", face, got)
		}
	}

	proj := CaptureProjection()
	if abs(proj[0]-1) > 1e-5 || abs(proj[5]-1) > 1e-5 {
		t.Errorf("90 degree square projection scale = %v, %v", proj[0], proj[5])
	}
}

func TestFaceDirection(t *testing.T) {
	axes := []math.Vec3{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}}
	for face, want := range axes {
		if got := FaceDirection(face, 0, 0, 1); !nearVec(got, want, 1e-6) {
			t.Errorf("face %d centre = %+v, want %+v", face, got, want)
		}
	}

	// Texel (0,0) of +X on a 2x2 face: u = v = -0.5.
	got := FaceDirection(0, 0, 0, 2)
	want := math.Vec3{X: 1, Y: 0.5, Z: 0.5}.Normalize()
	if !nearVec(got, want, 1e-6) {
		t.Errorf("+X corner texel = %+v, want %+v", got, want)
	}
	if abs(got.Length()-1) > 1e-6 {
		t.Errorf("direction not normalized: %v", got.Length())
	}
}

func TestSky_Radiance(t *testing.T) {
	sky := DefaultSky()

	if got := sky.Radiance(math.Vec3{Y: -1}); !nearVec(got, math.Vec3{X: 0.02, Y: 0.02, Z: 0.02}, 1e-6) {
		t.Errorf("nadir = %+v", got)
	}
	if got := sky.Radiance(math.Vec3{Y: 1}); !nearVec(got, math.Vec3{X: 0.6, Y: 0.7, Z: 0.9}, 1e-3) {
		t.Errorf("zenith = %+v", got)
	}

	// Looking into the sun adds the full intensity on every channel.
	sun := sky.Radiance(sky.SunDir)
	base := skyHorizon.Lerp(skyZenith, clamp01(sky.SunDir.Y*0.5+0.5))
	if !nearVec(sun, base.Add(math.Vec3{X: 6, Y: 6, Z: 6}), 1e-4) {
		t.Errorf("sun = %+v, want %+v", sun, base.Add(math.Vec3{X: 6, Y: 6, Z: 6}))
	}
}

func TestSky_Faces(t *testing.T) {
	sky := DefaultSky()
	faces := sky.Faces(4)
	for f, data := range faces {
		if len(data) != 4*4*3 {
			t.Fatalf("face %d has %d floats", f, len(data))
		}
	}
	// +Y row 1, column 2.
	want := sky.Radiance(FaceDirection(2, 2, 1, 4))
	i := (1*4 + 2) * 3
	got := math.Vec3{X: faces[2][i], Y: faces[2][i+1], Z: faces[2][i+2]}
	if got != want {
		t.Errorf("texel = %+v, want %+v", got, want)
	}
}

func TestMipSizeAndRoughness(t *testing.T) {
	tests := []struct {
		mip       int
		size      int
		roughness float32
	}{
		{0, 128, 0},
		{1, 64, 0.25},
		{2, 32, 0.5},
		{3, 16, 0.75},
		{4, 8, 1},
	}
	for _, tt := range tests {
		if got := MipSize(128, tt.mip); got != tt.size {
			t.Errorf("MipSize(128, %d) = %d, want %d", tt.mip, got, tt.size)
		}
		if got := MipRoughness(tt.mip, 5); got != tt.roughness {
			t.Errorf("MipRoughness(%d, 5) = %v, want %v", tt.mip, got, tt.roughness)
		}
	}
	if MipSize(4, 10) != 1 {
		t.Error("MipSize should clamp to 1")
	}
	if MipRoughness(0, 1) != 0 {
		t.Error("single mip should have roughness 0")
	}
}

func TestHammersley(t *testing.T) {
	tests := []struct {
		i, n uint32
		x, y float32
	}{
		{0, 4, 0, 0},
		{1, 4, 0.25, 0.5},
		{2, 4, 0.5, 0.25},
		{3, 4, 0.75, 0.75},
	}
	for _, tt := range tests {
		x, y := Hammersley(tt.i, tt.n)
		if x != tt.x || y != tt.y {
			t.Errorf("Hammersley(%d, %d) = (%v, %v), want (%v, %v)", tt.i, tt.n, x, y, tt.x, tt.y)
		}
	}
}

func TestImportanceSampleGGX(t *testing.T) {
	n := math.Vec3{X: 0, Y: 1, Z: 0}
	for i := uint32(0); i < 64; i++ {
		x1, x2 := Hammersley(i, 64)
		h := ImportanceSampleGGX(x1, x2, n, 0.5)
		if abs(h.Length()-1) > 1e-5 {
			t.Fatalf("sample %d not normalized: %v", i, h.Length())
		}
		if h.Dot(n) < 0 {
			t.Fatalf("sample %d below the hemisphere: %+v", i, h)
		}
	}
	// A mirror surface samples only the normal.
	if h := ImportanceSampleGGX(0.3, 0.7, n, 0); !nearVec(h, n, 1e-5) {
		t.Errorf("roughness 0 sample = %+v", h)
	}
}

func TestGeometrySchlickGGX(t *testing.T) {
	// k = r^2/2 = 0.5 at r = 1; G(0.5) = 0.5 / (0.25 + 0.5).
	if got := GeometrySchlickGGX(0.5, 1); abs(got-2.0/3.0) > 1e-6 {
		t.Errorf("G(0.5, 1) = %v", got)
	}
	if got := GeometrySmith(1, 1, 0.7); abs(got-1) > 1e-6 {
		t.Errorf("Smith at normal incidence = %v", got)
	}
}

func TestIntegrateBRDF(t *testing.T) {
	scale, bias := IntegrateBRDF(1, 0, 64)
	if abs(scale-1) > 1e-3 || abs(bias) > 1e-3 {
		t.Errorf("mirror at normal incidence = (%v, %v), want (1, 0)", scale, bias)
	}

	scale, bias = IntegrateBRDF(0.5, 1, 256)
	if scale <= 0 || bias <= 0 || scale+bias >= 1 {
		t.Errorf("rough grazing = (%v, %v)", scale, bias)
	}

	if s, b := IntegrateBRDF(0.5, 0.5, 0); s != 0 || b != 0 {
		t.Errorf("zero samples = (%v, %v)", s, b)
	}
}

func TestBRDFLUT(t *testing.T) {
	lut := BRDFLUT(4, 64)
	if len(lut) != 4*4*2 {
		t.Fatalf("len = %d", len(lut))
	}
	for i, v := range lut {
		if v < 0 || v > 1.1 || gomath.IsNaN(float64(v)) {
			t.Fatalf("texel component %d = %v out of range", i, v)
		}
	}
	// Row 0 is the smoothest; its last column is closest to normal incidence.
	s, b := IntegrateBRDF(0.875, 0.125, 64)
	i := (0*4 + 3) * 2
	if lut[i] != s || lut[i+1] != b {
		t.Errorf("texel (3,0) = (%v, %v), want (%v, %v)", lut[i], lut[i+1], s, b)
	}
}

func TestIrradiance_ConstantEnvironment(t *testing.T) {
	white := func(math.Vec3) math.Vec3 { return math.Vec3{X: 1, Y: 1, Z: 1} }
	for _, n := range []math.Vec3{{Y: 1}, {Z: 1}, {X: -1}, math.Vec3{X: 1, Y: 1, Z: 1}.Normalize()} {
		got := Irradiance(white, n, 0.025)
		if !nearVec(got, math.Vec3{X: 1, Y: 1, Z: 1}, 0.03) {
			t.Errorf("irradiance around %+v = %+v, want ~1", n, got)
		}
	}
}

func TestIrradiance_SkyBrighterAbove(t *testing.T) {
	sky := DefaultSky()
	up := Irradiance(sky.Radiance, math.Vec3{Y: 1}, 0.1)
	down := Irradiance(sky.Radiance, math.Vec3{Y: -1}, 0.1)
	if up.Z <= down.Z {
		t.Errorf("upward irradiance %+v not brighter than downward %+v", up, down)
	}
}

func TestEquirectSampling(t *testing.T) {
	u, v := EquirectUV(math.Vec3{X: 1})
	if abs(u-0.5) > 1e-6 || abs(v-0.5) > 1e-6 {
		t.Errorf("+X uv = (%v, %v)", u, v)
	}
	if _, v := EquirectUV(math.Vec3{Y: 1}); abs(v-1) > 1e-6 {
		t.Errorf("zenith v = %v", v)
	}

	// 2x2 panorama: top row red, bottom row blue.
	img := &formats.HDR{Width: 2, Height: 2, Exposure: 1, Pixels: []float32{
		1, 0, 0, 1, 0, 0,
		0, 0, 1, 0, 0, 1,
	}}
	if got := SampleEquirect(img, math.Vec3{Y: 1}); got != (math.Vec3{X: 1}) {
		t.Errorf("zenith sample = %+v, want red", got)
	}
	if got := SampleEquirect(img, math.Vec3{Y: -1}); got != (math.Vec3{Z: 1}) {
		t.Errorf("nadir sample = %+v, want blue", got)
	}
	if got := SampleEquirect(nil, math.Vec3{Y: 1}); got != (math.Vec3{}) {
		t.Errorf("nil image sample = %+v", got)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	s := DefaultSettings()
	if s.EnvSizeHDR != 512 || s.EnvSizeProcedural != 128 || s.IrradianceSize != 32 ||
		s.PrefilterSize != 128 || s.PrefilterMips != 5 || s.BRDFSize != 512 || s.SampleCount != 1024 {
		t.Errorf("default sizes = %+v", s)
	}
	if s.Units != (Units{Irradiance: 10, Prefilter: 11, BRDF: 12}) {
		t.Errorf("default units = %+v", s.Units)
	}
	if !nearVec(s.Sky.SunDir, DefaultSky().SunDir, 1e-6) || s.Sky.SunPower != 64 || s.Sky.SunIntensity != 6 {
		t.Errorf("default sky = %+v", s.Sky)
	}

	zero := SettingsFromConfig(config.EnvironmentConfig{})
	if zero.EnvSizeHDR != 512 || zero.IrradianceDelta != 0.025 || zero.Sky.SunPower != 64 {
		t.Errorf("zero config did not fall back to defaults: %+v", zero)
	}

	small := SettingsFromConfig(config.EnvironmentConfig{PrefilterSize: 8, PrefilterMips: 10})
	if small.PrefilterMips != 4 {
		t.Errorf("PrefilterMips = %d, want 4 for an 8px chain", small.PrefilterMips)
	}
}
