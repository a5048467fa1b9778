package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagModel      = flag.String("model", "", "Path to a .gltf, .glb or .obj model")
	flagHDR        = flag.String("hdr", "", "Path to an equirectangular .hdr environment")
	flagNoHDR      = flag.Bool("no-hdr", false, "Ignore the HDR environment and use the procedural sky")
	flagAutoFrame  = flag.Bool("auto-frame", false, "Fit the camera to the model bounds on load")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagModel != "" {
		cfg.Model.Path = *flagModel
	} else if flag.NArg() > 0 {
		cfg.Model.Path = flag.Arg(0)
	}
	if *flagHDR != "" {
		cfg.Environment.HDRPath = *flagHDR
	}
	if *flagNoHDR {
		cfg.Environment.DisableHDR = true
	}
	if *flagAutoFrame {
		cfg.Render.AutoFrame = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
