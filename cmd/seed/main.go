// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"invoicing/internal/app"
	"invoicing/internal/config"
	"invoicing/internal/infrastructure/storage/postgres"
	"invoicing/internal/seed"
	"invoicing/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	cfg, err := config.Load(".env")
	if err != nil {
		logger.Fatal(ctx, "failed to load configuration", "error", err)
	}
	if cfg.Storage != config.StoragePostgres {
		logger.Fatal(ctx, "seeding needs STORAGE=postgres; the memory store is seeded by the server", "storage", cfg.Storage)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL, int32(cfg.DBMaxConns)))
	if err != nil {
		logger.Fatal(ctx, "failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := pool.Migrate(ctx); err != nil {
		logger.Fatal(ctx, "failed to apply schema", "error", err)
	}

	res, err := seed.Demo(ctx, app.NewServices(app.PostgresRepositories(pool)), time.Now().UTC())
	if err != nil {
		logger.Fatal(ctx, "failed to seed demo data", "error", err)
	}
	pool.LogStats(ctx)

	log.Infow("seeding completed successfully",
		"counterparties", res.Counterparties,
		"invoices", res.Invoices,
	)
}
