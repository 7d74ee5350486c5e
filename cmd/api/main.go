// Package main is the entry point for the daily-office API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/daily-office/internal/api"
	"github.com/zapponejosh/daily-office/internal/config"
	"github.com/zapponejosh/daily-office/internal/database"
	"github.com/zapponejosh/daily-office/internal/lectionary"
	"github.com/zapponejosh/daily-office/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting daily-office API",
		slog.Int("port", cfg.Port),
		slog.String("timezone", cfg.Timezone),
		slog.String("reference_source", cfg.ReferenceSource),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	tables, db, err := database.LoadReference(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("load reference tables: %w", err)
	}

	// Only the sqlite source has a store to health-check.
	var store api.HealthChecker
	if db != nil {
		defer db.Close()
		store = db
	}

	cache := lectionary.NewCache(tables)
	warm := func() {
		years := cache.Warm(cfg.Today())
		log.Info("lectionary cache warmed", slog.Any("years", years), slog.Int("cached", cache.Len()))
	}
	warm()

	if cfg.WarmCron != "" {
		scheduler := cron.New(cron.WithLocation(cfg.Location()))
		if _, err := scheduler.AddFunc(cfg.WarmCron, warm); err != nil {
			return fmt.Errorf("schedule cache warm-up: %w", err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		log.Info("cache warm-up scheduled", slog.String("spec", cfg.WarmCron))
	}

	handlers := api.NewHandlers(cache, store, cfg, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, api.NewMetrics(cache), cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
