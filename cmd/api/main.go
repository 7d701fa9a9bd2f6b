package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/markdave123-py/content-processor/internal/app"
	"github.com/markdave123-py/content-processor/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	logger := config.NewLogger(cfg, os.Stderr)
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	logger.Info("content processor is running", "port", cfg.Port)
	if err := application.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
	logger.Info("shut down cleanly")
}
