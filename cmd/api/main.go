package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "club-recon/docs"
	"club-recon/internal/app"
	"club-recon/internal/commands"
	"club-recon/internal/config"
	"club-recon/pkg/logger"
)

// @title Club Finance Reconciliation API
// @version 1.0
// @description API for matching club bank deposits against member payment requests
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.App.LogLevel)
	logger.GetLogger().Info("Starting Club Finance Reconciliation Service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to initialize application")
	}
	defer a.Close()

	if err := commands.Serve(ctx, a, true); err != nil {
		logger.GetLogger().WithError(err).Error("Server stopped with error")
		return
	}
	logger.GetLogger().Info("Server stopped")
}
