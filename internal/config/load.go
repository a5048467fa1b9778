package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < environment < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyEnv(cfg, os.LookupEnv)
	applyFlags(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "PBRViewer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PBRViewer")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pbr-viewer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pbr-viewer")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv applies environment variable overrides.
// EXR_PATH and EXR_DISABLE are accepted as aliases for older setups.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	for _, key := range []string{"EXR_PATH", "HDR_PATH"} {
		if v, ok := lookup(key); ok && v != "" {
			cfg.Environment.HDRPath = v
		}
	}
	for _, key := range []string{"EXR_DISABLE", "HDR_DISABLE"} {
		if v, ok := lookup(key); ok && envTrue(v) {
			cfg.Environment.DisableHDR = true
		}
	}
	if v, ok := lookup("AUTO_FRAME"); ok && envTrue(v) {
		cfg.Render.AutoFrame = true
	}
}

// envTrue treats any set value other than an explicit false as enabled.
func envTrue(v string) bool {
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}
