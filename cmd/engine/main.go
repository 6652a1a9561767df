package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/AndVl1/chatkeep-sub003/internal/app"
	"github.com/AndVl1/chatkeep-sub003/internal/config"
	"github.com/AndVl1/chatkeep-sub003/internal/service"
	"github.com/AndVl1/chatkeep-sub003/pkg/telemetry"
)

func main() {

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.EnableTelemetry {
		shutdown, err := telemetry.InitTracer("moderation-engine", os.Stderr)
		if err != nil {
			logger.Error("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("Failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	// Ports are provided by the transport binary that embeds the engine;
	// running standalone serves the storage layer, sweeps and metrics.
	application := app.NewApp(cfg, logger, service.Ports{})

	if err := application.Run(context.Background()); err != nil {
		logger.Error("Application error", "error", err)
		os.Exit(1)
	}
}
