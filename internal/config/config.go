package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string // QD_DATABASE_URL (required)
	DatabaseDriver string // QD_DATABASE_DRIVER (postgres, pgx or sqlite3; inferred from the URL when empty)
	GRPCAddr       string // QD_GRPC_ADDR (default ":9090")
	HTTPAddr       string // QD_HTTP_ADDR (default ":8080")
	NATSURL        string // QD_NATS_URL (optional, empty = no events)
	AuthToken      string // QD_AUTH_TOKEN (optional, empty = auth disabled)

	// Profile "local" seeds sample members on start.
	Profile  string // QD_PROFILE
	SeedFile string // QD_SEED_FILE (YAML fixture; empty = built-in fixture)

	LogLevel  slog.Level // QD_LOG_LEVEL (default "info")
	LogFormat string     // QD_LOG_FORMAT ("text" or "json", default "text")

	// Sync settings
	SyncInterval   time.Duration // QD_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // QD_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // QD_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // QD_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // QD_SYNC_S3_KEY (default "querydsl/export.jsonl")
}

// Load reads the configuration from the environment. Variables from the
// file named by QD_ENV_FILE (default ".env") are loaded first without
// overriding ones already set; a missing file is not an error.
func Load() (*Config, error) {
	envFile := envOrDefault("QD_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	c := &Config{
		DatabaseURL:    os.Getenv("QD_DATABASE_URL"),
		DatabaseDriver: os.Getenv("QD_DATABASE_DRIVER"),
		GRPCAddr:       envOrDefault("QD_GRPC_ADDR", ":9090"),
		HTTPAddr:       envOrDefault("QD_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("QD_NATS_URL"),
		AuthToken:      os.Getenv("QD_AUTH_TOKEN"),
		Profile:        os.Getenv("QD_PROFILE"),
		SeedFile:       os.Getenv("QD_SEED_FILE"),
		LogFormat:      strings.ToLower(envOrDefault("QD_LOG_FORMAT", "text")),
		SyncS3Bucket:   os.Getenv("QD_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("QD_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("QD_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("QD_SYNC_S3_KEY", "querydsl/export.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("QD_DATABASE_URL is required")
	}

	if err := c.LogLevel.UnmarshalText([]byte(envOrDefault("QD_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("QD_LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return nil, fmt.Errorf("QD_LOG_FORMAT: must be text or json, got %q", c.LogFormat)
	}

	intervalStr := envOrDefault("QD_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("QD_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

// SeedOnStart reports whether the server should load sample data.
func (c *Config) SeedOnStart() bool {
	return c.Profile == "local"
}

// NewLogger returns the slog logger described by the config, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
