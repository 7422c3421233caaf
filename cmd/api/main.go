// Command api serves the quick-commerce insights HTTP API: marketing ROAS, delivery delay risk and
// the feedback assistant.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quickcommerce/insights/internal/config"
	"github.com/quickcommerce/insights/internal/observability"
	"github.com/quickcommerce/insights/pkg/database"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return 1
	}

	observability.SetupLogging(cfg.LogLevel)

	if err := cfg.RequireAPIKey(); err != nil {
		slog.Error("invalid configuration", "error", err)

		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithApplicationName("insights-api"))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)

		return 1
	}
	defer db.Close()

	app, err := NewApp(ctx, cfg, db)
	if err != nil {
		slog.Error("failed to start", "error", err)

		return 1
	}

	runErr := app.Run(ctx)
	if runErr != nil {
		slog.Error("server failed", "error", runErr)
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)

		return 1
	}

	slog.Info("server exited")

	if runErr != nil {
		return 1
	}

	return 0
}
