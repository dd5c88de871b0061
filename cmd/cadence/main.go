package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/logging"
	_ "github.com/sglre6355/cadence/internal/modules/info"
	_ "github.com/sglre6355/cadence/internal/modules/music_player"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/cadence
var version = "dev"

func main() {
	// a missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Version = version

	logger, closeLogger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogWebhookURL)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("starting cadence", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create and configure bot
	b := bot.NewBot(cfg)
	b.LoadModules()

	// Start bot
	if err := b.Start(ctx); err != nil {
		slog.Error("failed to start bot", "error", err)
		_ = b.Stop()
		closeLogger()
		os.Exit(1)
	}

	// Wait for shutdown signal
	<-ctx.Done()

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
	closeLogger()
}
