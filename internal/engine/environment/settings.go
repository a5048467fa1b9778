package environment

import (
	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/pkg/math"
)

// Units are the texture units the lighting resources are bound to.
type Units struct {
	Irradiance int
	Prefilter  int
	BRDF       int
}

// Settings controls the precomputation sizes and the procedural sky.
type Settings struct {
	DisableHDR        bool
	EnvSizeHDR        int
	EnvSizeProcedural int
	IrradianceSize    int
	IrradianceDelta   float32
	PrefilterSize     int
	PrefilterMips     int
	BRDFSize          int
	SampleCount       int
	Sky               Sky
	Units             Units
}

// DefaultSettings returns the stock sizes and sky.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default().Environment)
}

// SettingsFromConfig converts the environment config section. Zero or
// negative sizes fall back to the defaults.
func SettingsFromConfig(c config.EnvironmentConfig) Settings {
	s := Settings{
		DisableHDR:        c.DisableHDR,
		EnvSizeHDR:        orDefault(c.EnvSizeHDR, 512),
		EnvSizeProcedural: orDefault(c.EnvSizeProcedural, 128),
		IrradianceSize:    orDefault(c.IrradianceSize, 32),
		IrradianceDelta:   c.IrradianceDelta,
		PrefilterSize:     orDefault(c.PrefilterSize, 128),
		PrefilterMips:     orDefault(c.PrefilterMips, 5),
		BRDFSize:          orDefault(c.BRDFSize, 512),
		SampleCount:       orDefault(c.SampleCount, 1024),
		Sky: Sky{
			SunDir:       math.Vec3FromArray(c.SunDir),
			SunPower:     c.SunPower,
			SunIntensity: c.SunIntensity,
		},
		Units: Units{
			Irradiance: orDefault(c.IrradianceUnit, 10),
			Prefilter:  orDefault(c.PrefilterUnit, 11),
			BRDF:       orDefault(c.BRDFUnit, 12),
		},
	}
	if s.IrradianceDelta <= 0 {
		s.IrradianceDelta = 0.025
	}
	if s.Sky.SunDir.Length() == 0 {
		s.Sky.SunDir = math.Vec3{X: 0.5, Y: 0.8, Z: 0.3}
	}
	s.Sky.SunDir = s.Sky.SunDir.Normalize()
	if s.Sky.SunPower <= 0 {
		s.Sky.SunPower = 64
	}
	if s.Sky.SunIntensity < 0 {
		s.Sky.SunIntensity = 0
	}
	// Past log2(size)+1 levels the prefilter chain has nothing left to halve.
	if maxMips := mipLevels(s.PrefilterSize); s.PrefilterMips > maxMips {
		s.PrefilterMips = maxMips
	}
	return s
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func mipLevels(size int) int {
	n := 1
	for size > 1 {
		size >>= 1
		n++
	}
	return n
}
