package app

import (
	"context"
	"database/sql"
	"fmt"

	httpapi "bp-tracker-service/internal/api/http"
	"bp-tracker-service/internal/application/measurement"
	"bp-tracker-service/internal/application/stats"
	"bp-tracker-service/internal/config"
	"bp-tracker-service/internal/infrastructure/repository/postgres"
	"bp-tracker-service/internal/logging"
)

func provideConfig() config.Config {
	return config.Load()
}

func provideLogger(cfg config.Config) *logging.Logger {
	return logging.New(cfg.LogLevel)
}

func provideDB(ctx context.Context, cfg config.Config, logger *logging.Logger) (*sql.DB, error) {
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, fmt.Errorf("resolve database dsn: %w", err)
	}

	db, err := postgres.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "database connection established")
	return db, nil
}

func provideRepository(ctx context.Context, db *sql.DB) (*postgres.Repository, error) {
	repo, err := postgres.New(db)
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func provideMeasurementService(repo *postgres.Repository) *measurement.Service {
	return measurement.New(repo)
}

func provideStatsService(cfg config.Config, repo *postgres.Repository) (*stats.Service, error) {
	loc, err := cfg.StatsLocation()
	if err != nil {
		return nil, err
	}
	return stats.New(repo,
		stats.WithLocation(loc),
		stats.WithLimitCeiling(cfg.StatsLimitCap),
	), nil
}

func provideHTTPServer(cfg config.Config, measurements *measurement.Service, statistics *stats.Service, logger *logging.Logger) *httpapi.Server {
	return httpapi.NewServer(measurements, statistics, logger, httpapi.Config{
		ListLimitDefault: cfg.ListLimitDefault,
		ListLimitCap:     cfg.ListLimitCap,
		CORSOrigins:      cfg.CORSOrigins,
	})
}
