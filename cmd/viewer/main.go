// Package main is the entry point for the PBR model viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== PBR Viewer ===",
		zap.String("model", cfg.Model.Path),
		zap.String("hdr", cfg.Environment.HDRPath),
	)
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
