// Trustengine - Regional trust, fraud detection, and dynamic pricing engine
package main

import (
	"context"
	"os"

	"github.com/mindhaven/trustengine/internal/config"
	"github.com/mindhaven/trustengine/internal/logging"
	"github.com/mindhaven/trustengine/internal/server"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	logger := logging.New("info", "text")

	logger.Info("starting trustengine",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"scan_interval", cfg.FraudScanInterval,
		"geo_header", cfg.GeoCountryHeader,
	)

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
