// Package main is the entry point for the invoicing API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/app"
	"invoicing/internal/config"
	v1 "invoicing/internal/infrastructure/http/v1"
	"invoicing/internal/infrastructure/storage/memory"
	"invoicing/internal/infrastructure/storage/postgres"
	"invoicing/internal/seed"
	"invoicing/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
		File:        logger.FileConfig{Path: cfg.LogFile},
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting invoicing server", "version", version, "storage", cfg.Storage)

	// The dashboard reads amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// --- Storage ---
	var repos app.Repositories
	switch cfg.Storage {
	case config.StorageMemory:
		repos = app.MemoryRepositories(memory.New())
		log.Warn("using in-memory storage, data is lost on restart")
	default:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL, int32(cfg.DBMaxConns)))
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Info("database connection established")

		if cfg.AutoMigrate {
			if err := pool.Migrate(ctx); err != nil {
				log.Fatalw("failed to apply schema", "error", err)
			}
			log.Info("database schema applied")
		}
		repos = app.PostgresRepositories(pool)
	}

	services := app.NewServices(repos)

	if cfg.SeedDemoData {
		if _, err := seed.Demo(ctx, services, time.Now().UTC()); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Services:       services,
		Ready:          repos.Ready,
		Tables:         repos.Reports,
		AllowedOrigins: cfg.FrontendURLs,
		Version:        version,
		Storage:        repos.Name,
		Debug:          cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
