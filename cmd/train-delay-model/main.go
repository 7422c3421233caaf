// Package main trains the delivery delay-risk model from the orders table and writes the
// artifact the API loads at startup.
//
// Usage:
//
//	go run ./cmd/train-delay-model
//
// Environment variables:
//   - DATABASE_URL: PostgreSQL connection string (required)
//   - DELAY_MODEL_PATH: artifact destination (default: models/delay_prediction_model.json)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/quickcommerce/insights/internal/config"
	"github.com/quickcommerce/insights/internal/delaymodel"
	"github.com/quickcommerce/insights/internal/observability"
	"github.com/quickcommerce/insights/internal/repository"
	"github.com/quickcommerce/insights/pkg/database"
)

func main() {
	os.Exit(run())
}

func run() int {
	testFraction := flag.Float64("test-fraction", 0.2, "share of orders held out for evaluation")
	seed := flag.Uint64("seed", delaymodel.DefaultSeed, "random seed for the train/test split (0 is a valid seed)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return 1
	}

	observability.SetupLogging(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithApplicationName("insights-train-delay-model"))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)

		return 1
	}
	defer db.Close()

	outcomes, err := repository.NewOrdersRepository(db).DeliveryOutcomes(ctx)
	if err != nil {
		slog.Error("failed to load delivery outcomes", "error", err)

		return 1
	}

	slog.Info("loaded delivery outcomes", "count", len(outcomes))

	result, err := delaymodel.Train(outcomes, delaymodel.TrainOptions{TestFraction: *testFraction, Seed: seed})
	if err != nil {
		slog.Error("training failed", "error", err)

		return 1
	}

	if err := delaymodel.Save(cfg.DelayModelPath, result.Model); err != nil {
		slog.Error("failed to save model", "path", cfg.DelayModelPath, "error", err)

		return 1
	}

	fmt.Println()
	fmt.Println("Delay Model Summary")
	fmt.Println("===================")
	fmt.Printf("Training orders: %d\n", result.TrainSize)
	fmt.Printf("Test orders:     %d\n", result.TestSize)
	fmt.Printf("ROC AUC:         %.4f\n", result.AUC)
	fmt.Printf("Saved to:        %s\n", cfg.DelayModelPath)
	fmt.Println()

	slog.Info("delay model trained", "auc", result.AUC, "path", cfg.DelayModelPath)

	return 0
}
