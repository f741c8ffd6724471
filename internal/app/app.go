package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpapi "bp-tracker-service/internal/api/http"
	"bp-tracker-service/internal/config"
	"bp-tracker-service/internal/infrastructure/repository/postgres"
	"bp-tracker-service/internal/logging"
	"bp-tracker-service/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// App bundles the wired components and drives their lifecycle.
type App struct {
	cfg    config.Config
	logger *logging.Logger
	repo   *postgres.Repository
	server *httpapi.Server
}

// New assembles an application from its wired components.
func New(cfg config.Config, logger *logging.Logger, repo *postgres.Repository, server *httpapi.Server) *App {
	return &App{cfg: cfg, logger: logger, repo: repo, server: server}
}

// Logger exposes the application logger for the entrypoint.
func (a *App) Logger() *logging.Logger {
	return a.logger
}

// Run serves the API and the metrics endpoint until the context is
// cancelled, then shuts both down gracefully.
func (a *App) Run(ctx context.Context) error {
	config.LogConfig(ctx, a.logger, a.cfg)

	httpServer := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           a.server,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + a.cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		a.logger.Info(ctx, "metrics server listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error(ctx, "metrics server shutdown error", "error", err)
		}
	}()

	a.logger.Info(ctx, "HTTP server listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := a.repo.Close(); err != nil {
		a.logger.Error(ctx, "failed to close repository", "error", err)
	}

	a.logger.Info(ctx, "server stopped")
	return nil
}
