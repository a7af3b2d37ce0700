// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/gofiber/fiber/v2"

	"searchlens/internal/config"
	"searchlens/internal/database"
	"searchlens/internal/gsc"
	"searchlens/internal/http"
	"searchlens/internal/jobs"
	"searchlens/internal/logging"
	"searchlens/internal/monitoring"
	"searchlens/internal/session"
	"searchlens/internal/sitemap"
	"searchlens/internal/urlists"
)

// Application bundles the HTTP server, the background scheduler and the
// database manager behind one lifecycle.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.DBManager
	Sessions  *session.Registry
	Scheduler *jobs.Scheduler
	server    *fiber.App
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	searchClient, err := gsc.NewClient(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create search console client: %w", err)
	}

	sessions := session.NewRegistry(cfg.SessionTTL(), logger)

	scheduler, err := jobs.NewScheduler(dbManager, sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jobs: %w", err)
	}

	deps := http.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       dbManager.GetConnection(),
		Search:   searchClient,
		Sessions: sessions,
		Sitemaps: sitemap.NewFetcher(cfg, logger),
		Metrics:  monitoring.GetMetrics(),
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Sessions:  sessions,
		Scheduler: scheduler,
		server:    NewRouter(deps),
	}, nil
}

// Server returns the underlying fiber application.
func (a *Application) Server() *fiber.App {
	return a.server
}

// SeedURLLists loads the configured seed file and creates any missing lists.
// A blank setting means no seeding.
func (a *Application) SeedURLLists() error {
	if a.Config.URLListsSeedFile == "" {
		return nil
	}

	seed, err := urlists.LoadSeedFile(a.Config.URLListsSeedFile)
	if err != nil {
		return fmt.Errorf("failed to load url list seed file: %w", err)
	}
	return urlists.ApplySeed(a.DBManager.GetConnection(), a.Logger, seed)
}

// StartAsync starts the background scheduler and the HTTP listener. The
// listener runs in its own goroutine; failures after startup are logged.
func (a *Application) StartAsync() error {
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start background jobs: %w", err)
	}

	addr := ":" + a.Config.GetPort()
	go func() {
		if err := a.server.Listen(addr); err != nil {
			a.Logger.Error("HTTP server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	a.Logger.Info("HTTP server listening", slog.String("addr", addr))
	return nil
}

// Shutdown stops the HTTP server, the background jobs and the database in
// that order. The context bounds how long the HTTP drain may take.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application")

	if err := a.server.ShutdownWithContext(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		return err
	}

	a.Scheduler.Stop()

	if err := a.DBManager.CheckpointWAL("TRUNCATE"); err != nil {
		a.Logger.Error("Final WAL checkpoint failed", slog.Any("error", err))
	}
	if err := a.DBManager.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	a.Logger.Info("Shutdown complete")
	return nil
}
