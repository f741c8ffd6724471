package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"bp-tracker-service/internal/logging"
)

// Config contains the application configuration loaded from environment
// variables.
type Config struct {
	HTTPPort         string
	MetricsPort      string
	DatabaseDSN      string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	CORSOrigins      []string
	StatsTimezone    string
	ListLimitDefault int
	ListLimitCap     int
	StatsLimitCap    int
	LogLevel         string
}

// Load reads configuration from the environment, falling back to defaults.
func Load() Config {
	return Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		MetricsPort:      getEnv("METRICS_PORT", "2112"),
		DatabaseDSN:      os.Getenv("DB_DSN"),
		DatabaseHost:     os.Getenv("DB_HOST"),
		DatabasePort:     os.Getenv("DB_PORT"),
		DatabaseUser:     os.Getenv("DB_USER"),
		DatabasePassword: os.Getenv("DB_PASSWORD"),
		DatabaseName:     os.Getenv("DB_NAME"),
		CORSOrigins:      splitOrigins(os.Getenv("CORS_ORIGIN")),
		StatsTimezone:    getEnv("STATS_TIMEZONE", "UTC"),
		ListLimitDefault: getEnvInt("LIST_LIMIT_DEFAULT", 100),
		ListLimitCap:     getEnvInt("LIST_LIMIT_CAP", 500),
		StatsLimitCap:    getEnvInt("STATS_LIMIT_CAP", 180),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// DatabaseURL returns the DSN, building one from the discrete DB_* values
// when none was provided directly.
func (c Config) DatabaseURL() (string, error) {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN, nil
	}

	if c.DatabaseHost == "" {
		return "", errors.New("database host is required when DSN is not provided")
	}
	if c.DatabaseUser == "" {
		return "", errors.New("database user is required when DSN is not provided")
	}
	if c.DatabaseName == "" {
		return "", errors.New("database name is required when DSN is not provided")
	}

	port := c.DatabasePort
	if port == "" {
		port = "5432"
	}

	connectionURL := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DatabaseHost, port),
		Path:   "/" + c.DatabaseName,
		User:   url.UserPassword(c.DatabaseUser, c.DatabasePassword),
	}

	query := connectionURL.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	connectionURL.RawQuery = query.Encode()

	return connectionURL.String(), nil
}

// StatsLocation resolves the timezone used for bucket boundaries. Bucket
// edges shift with this setting, so it is explicit configuration rather
// than an inherited database default.
func (c Config) StatsLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.StatsTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_TIMEZONE %q: %w", c.StatsTimezone, err)
	}
	return loc, nil
}

// LogConfig echoes the effective configuration at startup, redacting the
// password.
func LogConfig(ctx context.Context, logger *logging.Logger, cfg Config) {
	logger.Info(ctx, "configuration loaded",
		"http_port", cfg.HTTPPort,
		"metrics_port", cfg.MetricsPort,
		"db_dsn_set", cfg.DatabaseDSN != "",
		"db_host", emptyFallback(cfg.DatabaseHost),
		"db_port", emptyFallback(cfg.DatabasePort),
		"db_user", emptyFallback(cfg.DatabaseUser),
		"db_password_set", cfg.DatabasePassword != "",
		"db_name", emptyFallback(cfg.DatabaseName),
		"cors_origins", strings.Join(cfg.CORSOrigins, ","),
		"stats_timezone", cfg.StatsTimezone,
		"list_limit_default", cfg.ListLimitDefault,
		"list_limit_cap", cfg.ListLimitCap,
		"stats_limit_cap", cfg.StatsLimitCap,
		"log_level", cfg.LogLevel,
	)
}

// splitOrigins parses the CORS_ORIGIN allow-list. Unset or "*" means any
// origin and yields an empty list.
func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "*" {
			return nil
		}
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func emptyFallback(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
