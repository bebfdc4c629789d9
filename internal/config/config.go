package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	// Environment is "dev" or "prod". It selects the .env file and the
	// default database SSL mode.
	Environment string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DataDir is the root of the on-disk data tree (raw and processed CSVs).
	DataDir string

	// Census API configuration.
	CensusAPIKey    string
	CensusTimeout   time.Duration
	DownloadWorkers int // 0 sizes the pool from the CPU count

	// Data Commons configuration.
	DataCommonsAPIKey    string
	DataCommonsTimeout   time.Duration
	DataCommonsCacheSize int

	// Postgres configuration. PostgresURL, when set, overrides the
	// individual host/port/user fields.
	PostgresEnabled  bool
	PostgresURL      string
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	UploadBatchSize  int
}

// Load reads configuration from environment variables, applying defaults
// where unset. An environment-specific .env.<environment> file in the
// working directory is read first, falling back to plain .env; neither
// overrides variables already present in the environment.
func Load() (*Config, error) {
	environment := os.Getenv("ENVIRONMENT")
	if environment != "dev" && environment != "prod" {
		environment = "dev"
	}
	if err := godotenv.Load(".env." + environment); err != nil {
		_ = godotenv.Load()
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	censusTimeout, err := parseDuration("CENSUS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	dcTimeout, err := parseDuration("DATACOMMONS_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	downloadWorkers, err := parseIntInRange("DOWNLOAD_WORKERS", 0, 0, 64)
	if err != nil {
		return nil, err
	}
	uploadBatchSize, err := parseIntInRange("UPLOAD_BATCH_SIZE", 500, 1, 5000)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseIntInRange("DATACOMMONS_CACHE_SIZE", 1000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}

	postgresPort, err := parseIntInRange("POSTGRES_PORT", 5432, 1, 65535)
	if err != nil {
		return nil, err
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	postgresHost := os.Getenv("POSTGRES_HOST")
	postgresEnabled := postgresURL != "" || postgresHost != ""
	if v := os.Getenv("POSTGRES_ENABLED"); v != "" {
		postgresEnabled = v == "true"
	}

	defaultSSLMode := "disable"
	if environment == "prod" {
		defaultSSLMode = "require"
	}

	cfg := &Config{
		Environment: environment,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir: envOrDefault("DATA_DIR", "data"),

		CensusAPIKey:    os.Getenv("CENSUS_API_KEY"),
		CensusTimeout:   censusTimeout,
		DownloadWorkers: downloadWorkers,

		DataCommonsAPIKey:    os.Getenv("DATACOMMONS_API_KEY"),
		DataCommonsTimeout:   dcTimeout,
		DataCommonsCacheSize: cacheSize,

		PostgresEnabled:  postgresEnabled,
		PostgresURL:      postgresURL,
		PostgresHost:     postgresHost,
		PostgresPort:     postgresPort,
		PostgresUser:     envOrDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       envOrDefault("POSTGRES_DB", "climate_migration"),
		PostgresSSLMode:  envOrDefault("POSTGRES_SSLMODE", defaultSSLMode),
		UploadBatchSize:  uploadBatchSize,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.PostgresEnabled && cfg.PostgresURL == "" && cfg.PostgresHost == "" {
		return nil, errors.New("POSTGRES_ENABLED is true but neither POSTGRES_URL nor POSTGRES_HOST is set")
	}

	return cfg, nil
}

// PostgresDSN assembles the connection string for the configured database.
func (c *Config) PostgresDSN() string {
	if c.PostgresURL != "" {
		return c.PostgresURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, fallback, min, max int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, min, max)
	}
	return n, nil
}
