package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func initFile(t *testing.T, level string) string {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "viewer.log")
	cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return logFile
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "viewer.log")

	// 1MB is the smallest size lumberjack accepts.
	cfg := FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	payload := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("frame %d: %s", i, payload)
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read log dir: %v", err)
	}
	rotated := 0
	for _, e := range entries {
		name := e.Name()
		if name == "viewer.log" || !strings.HasPrefix(name, "viewer-") {
			continue
		}
		rotated++
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s lacks a timestamp", name)
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files in %v", entries)
	}
}

func TestLogLevels(t *testing.T) {
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	tests := []struct {
		level string
		first int // index into all of the lowest level written
	}{
		{"debug", 0},
		{"info", 1},
		{"warn", 2},
		{"warning", 2},
		{"error", 3},
		{"bogus", 1},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := initFile(t, tt.level)

			l := Named("levels")
			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message")

			out := readLog(t, logFile)
			for i, lvl := range all {
				has := strings.Contains(out, lvl)
				if i >= tt.first && !has {
					t.Errorf("expected %s in output for level %q", lvl, tt.level)
				}
				if i < tt.first && has {
					t.Errorf("unexpected %s in output for level %q", lvl, tt.level)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"Warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("viewer.log")
	want := FileConfig{Path: "viewer.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}

func TestNamedBeforeInit(t *testing.T) {
	saved := Log
	Log = nil
	defer func() { Log = saved }()

	// Must not panic without an initialised global logger.
	Named("texture").Info("dropped")
	Default("model").Warn("dropped")
}

func TestDefaultSinkWritesComponent(t *testing.T) {
	logFile := initFile(t, "debug")

	Default("environment").Warn("hdr decode failed")

	out := readLog(t, logFile)
	if !strings.Contains(out, "environment") {
		t.Errorf("expected component name in output, got %q", out)
	}
	if !strings.Contains(out, "hdr decode failed") {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	s := Nop()
	if OrNop(s) != s {
		t.Error("OrNop should return the given sink")
	}
}
