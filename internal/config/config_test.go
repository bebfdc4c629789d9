package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Empty(t, cfg.CensusAPIKey)
	assert.Equal(t, 30*time.Second, cfg.CensusTimeout)
	assert.Equal(t, 0, cfg.DownloadWorkers)
	assert.Equal(t, 15*time.Second, cfg.DataCommonsTimeout)
	assert.Equal(t, 1000, cfg.DataCommonsCacheSize)
	assert.False(t, cfg.PostgresEnabled)
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, "postgres", cfg.PostgresUser)
	assert.Equal(t, "climate_migration", cfg.PostgresDB)
	assert.Equal(t, "disable", cfg.PostgresSSLMode)
	assert.Equal(t, 500, cfg.UploadBatchSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_DIR", "/srv/pipeline-data")
	t.Setenv("CENSUS_API_KEY", "census-key")
	t.Setenv("CENSUS_TIMEOUT", "45s")
	t.Setenv("DOWNLOAD_WORKERS", "8")
	t.Setenv("DATACOMMONS_API_KEY", "dc-key")
	t.Setenv("DATACOMMONS_TIMEOUT", "20s")
	t.Setenv("DATACOMMONS_CACHE_SIZE", "500")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_USER", "pipeline")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "analytics")
	t.Setenv("POSTGRES_SSLMODE", "require")
	t.Setenv("UPLOAD_BATCH_SIZE", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/srv/pipeline-data", cfg.DataDir)
	assert.Equal(t, "census-key", cfg.CensusAPIKey)
	assert.Equal(t, 45*time.Second, cfg.CensusTimeout)
	assert.Equal(t, 8, cfg.DownloadWorkers)
	assert.Equal(t, "dc-key", cfg.DataCommonsAPIKey)
	assert.Equal(t, 20*time.Second, cfg.DataCommonsTimeout)
	assert.Equal(t, 500, cfg.DataCommonsCacheSize)
	assert.True(t, cfg.PostgresEnabled)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, 5433, cfg.PostgresPort)
	assert.Equal(t, "pipeline", cfg.PostgresUser)
	assert.Equal(t, "secret", cfg.PostgresPassword)
	assert.Equal(t, "analytics", cfg.PostgresDB)
	assert.Equal(t, "require", cfg.PostgresSSLMode)
	assert.Equal(t, 250, cfg.UploadBatchSize)
}

func TestLoad_Environment(t *testing.T) {
	t.Run("prod requires SSL by default", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "prod")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "prod", cfg.Environment)
		assert.Equal(t, "require", cfg.PostgresSSLMode)
	})

	t.Run("explicit SSL mode wins", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "prod")
		t.Setenv("POSTGRES_SSLMODE", "verify-full")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "verify-full", cfg.PostgresSSLMode)
	})

	t.Run("unknown value falls back to dev", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "staging")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "dev", cfg.Environment)
		assert.Equal(t, "disable", cfg.PostgresSSLMode)
	})
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeCensusTimeout(t *testing.T) {
	t.Setenv("CENSUS_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CENSUS_TIMEOUT")
}

func TestLoad_InvalidDownloadWorkers(t *testing.T) {
	t.Setenv("DOWNLOAD_WORKERS", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_WORKERS")
}

func TestLoad_DownloadWorkersTooLarge(t *testing.T) {
	t.Setenv("DOWNLOAD_WORKERS", "9999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_WORKERS")
}

func TestLoad_InvalidUploadBatchSize(t *testing.T) {
	t.Setenv("UPLOAD_BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_BATCH_SIZE")
}

func TestLoad_PostgresHostImpliesEnabled(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.PostgresEnabled)
}

func TestLoad_PostgresExplicitlyDisabled(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.PostgresEnabled)
}

func TestLoad_PostgresEnabledWithoutHost(t *testing.T) {
	t.Setenv("POSTGRES_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_HOST")
}

func TestPostgresDSN(t *testing.T) {
	t.Run("assembles from parts", func(t *testing.T) {
		cfg := &Config{
			PostgresHost:     "db.internal",
			PostgresPort:     5433,
			PostgresUser:     "pipeline",
			PostgresPassword: "secret",
			PostgresDB:       "analytics",
			PostgresSSLMode:  "require",
		}
		assert.Equal(t,
			"host=db.internal port=5433 user=pipeline password=secret dbname=analytics sslmode=require",
			cfg.PostgresDSN())
	})

	t.Run("URL overrides parts", func(t *testing.T) {
		cfg := &Config{
			PostgresURL:  "postgres://u:p@h:5432/db",
			PostgresHost: "ignored",
		}
		assert.Equal(t, "postgres://u:p@h:5432/db", cfg.PostgresDSN())
	})
}
