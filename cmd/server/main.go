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

	"go.uber.org/zap"

	"github.com/Simplici0/cropcalc/internal/config"
	"github.com/Simplici0/cropcalc/internal/db"
	"github.com/Simplici0/cropcalc/internal/logger"
	"github.com/Simplici0/cropcalc/internal/migrations"
	"github.com/Simplici0/cropcalc/internal/multiplier"
	"github.com/Simplici0/cropcalc/internal/pricing"
	"github.com/Simplici0/cropcalc/internal/samples"
	"github.com/Simplici0/cropcalc/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables := multiplier.DefaultTables()
	if cfg.TablesPath != "" {
		tables, err = multiplier.LoadTables(cfg.TablesPath)
		if err != nil {
			baseLogger.Fatal("failed to load multiplier tables", zap.String("path", cfg.TablesPath), zap.Error(err))
		}
	}
	calc, err := multiplier.NewCalculator(tables)
	if err != nil {
		baseLogger.Fatal("invalid multiplier tables", zap.Error(err))
	}

	store, closeStore, err := openStore(ctx, cfg, logger.Named(baseLogger, "store"))
	if err != nil {
		baseLogger.Fatal("failed to open sample store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()
	baseLogger.Info("sample store ready", zap.String("backend", cfg.StoreBackend), zap.String("path", cfg.StorePath()))

	estimator := pricing.NewEstimator(store, calc, pricing.WithLogger(logger.Named(baseLogger, "pricing")))
	srv := newServer(estimator, store, calc, logger.Named(baseLogger, "http"))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (samples.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		database, err := db.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(database); err != nil {
			database.Close()
			return nil, nil, err
		}
		store := samples.NewSQLiteStore(database)

		if cfg.ImportCSVPath != "" {
			if err := importLegacy(ctx, cfg.ImportCSVPath, store, log); err != nil {
				database.Close()
				return nil, nil, err
			}
		}
		return store, func() { _ = database.Close() }, nil

	default:
		store, err := samples.OpenCSV(cfg.SamplesPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func importLegacy(ctx context.Context, path string, dst samples.Store, log *zap.Logger) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("legacy sample file not found, skipping import", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("stat legacy sample file: %w", err)
	}

	src, err := samples.OpenCSV(path)
	if err != nil {
		return err
	}
	stats, err := seed.Run(ctx, src, dst)
	if err != nil {
		return err
	}
	log.Info("legacy sample import finished",
		zap.String("path", path),
		zap.Int("inserts", stats.Inserts),
		zap.Bool("skipped", stats.Skipped),
	)
	return nil
}
