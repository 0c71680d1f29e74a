// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ammerola/stockroom/internal/bootstrap"
	"github.com/ammerola/stockroom/internal/pkg/config"
	"github.com/ammerola/stockroom/internal/pkg/logger"
)

func main() {
	// Parse flags
	var (
		seedFile = flag.String("file", "", "JSON seed file (built-in demo data when empty)")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying the store")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(ctx, cfg, slogger)
	if err == nil {
		err = config.ApplySecrets(ctx, cfg, secrets)
	}
	if err != nil {
		slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	seed := defaultSeed()
	if *seedFile != "" {
		if seed, err = LoadSeedFile(*seedFile); err != nil {
			slogger.Error("failed to load seed file", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	backend, err := bootstrap.OpenBackend(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backend.Close()

	engine := bootstrap.NewEngine(backend, cfg, bootstrap.Extras{}, slogger)

	summary, err := NewSeeder(engine, *dryRun, slogger).Run(ctx, seed)
	if err != nil {
		slogger.Error("seed operation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING OPERATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Locations created: %d (skipped %d)\n", summary.LocationsCreated, summary.LocationsSkipped)
	fmt.Printf("Items created:     %d (skipped %d)\n", summary.ItemsCreated, summary.ItemsSkipped)
	fmt.Printf("Sales recorded:    %d (replayed %d)\n", summary.SalesRecorded, summary.SalesReplayed)

	slogger.Info("seed operation completed",
		slog.Int("locations_created", summary.LocationsCreated),
		slog.Int("items_created", summary.ItemsCreated),
		slog.Int("sales_recorded", summary.SalesRecorded))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the store")
	}
}
