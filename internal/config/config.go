// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Model       ModelConfig       `yaml:"model"`
	Environment EnvironmentConfig `yaml:"environment"`
	Render      RenderConfig      `yaml:"render"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"`
}

// ModelConfig holds asset import settings.
type ModelConfig struct {
	Path                  string `yaml:"path"`
	FlipUVs               bool   `yaml:"flip_uvs"`
	GenNormals            bool   `yaml:"gen_normals"`
	CalcTangents          bool   `yaml:"calc_tangents"`
	AlphaModeTransparency bool   `yaml:"alpha_mode_transparency"`
}

// EnvironmentConfig holds image-based lighting precomputation settings.
type EnvironmentConfig struct {
	HDRPath           string     `yaml:"hdr_path"`
	DisableHDR        bool       `yaml:"disable_hdr"`
	EnvSizeHDR        int        `yaml:"env_size_hdr"`
	EnvSizeProcedural int        `yaml:"env_size_procedural"`
	IrradianceSize    int        `yaml:"irradiance_size"`
	IrradianceDelta   float32    `yaml:"irradiance_delta"`
	PrefilterSize     int        `yaml:"prefilter_size"`
	PrefilterMips     int        `yaml:"prefilter_mips"`
	BRDFSize          int        `yaml:"brdf_size"`
	SampleCount       int        `yaml:"sample_count"`
	SunDir            [3]float32 `yaml:"sun_dir"`
	SunPower          float32    `yaml:"sun_power"`
	SunIntensity      float32    `yaml:"sun_intensity"`
	IrradianceUnit    int        `yaml:"irradiance_unit"`
	PrefilterUnit     int        `yaml:"prefilter_unit"`
	BRDFUnit          int        `yaml:"brdf_unit"`
}

// RenderConfig holds per-frame rendering settings.
type RenderConfig struct {
	Exposure   float32    `yaml:"exposure"`
	ClearColor [3]float32 `yaml:"clear_color"`
	AutoFrame  bool       `yaml:"auto_frame"`
	Skybox     bool       `yaml:"skybox"`
	FOVDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Screenshot string     `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "PBR Viewer",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
		},
		Model: ModelConfig{
			FlipUVs:      true,
			GenNormals:   true,
			CalcTangents: true,
		},
		Environment: EnvironmentConfig{
			EnvSizeHDR:        512,
			EnvSizeProcedural: 128,
			IrradianceSize:    32,
			IrradianceDelta:   0.025,
			PrefilterSize:     128,
			PrefilterMips:     5,
			BRDFSize:          512,
			SampleCount:       1024,
			SunDir:            [3]float32{0.5, 0.8, 0.3},
			SunPower:          64,
			SunIntensity:      6,
			IrradianceUnit:    10,
			PrefilterUnit:     11,
			BRDFUnit:          12,
		},
		Render: RenderConfig{
			Exposure:   1.0,
			ClearColor: [3]float32{0.1, 0.1, 0.12},
			AutoFrame:  false,
			Skybox:     true,
			FOVDegrees: 45,
			Near:       0.1,
			Far:        100,
			Screenshot: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
