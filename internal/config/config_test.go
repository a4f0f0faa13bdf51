package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	m, err := NewManager()
	require.NoError(t, err)
	return m
}

func TestManagerDefaults(t *testing.T) {
	m := newTestManager(t)
	cfg := m.GetConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./data/reports.db", cfg.Database.Path)
	assert.Equal(t, "http://localhost:7860", cfg.Segmentation.BaseURL)
	assert.Equal(t, 128, cfg.Cache.LRUSize)
	assert.Empty(t, cfg.Cache.RedisURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Reference.Path)

	assert.NoError(t, m.Validate())
}

func TestManagerEnvironmentOverrides(t *testing.T) {
	t.Setenv("NEUROQUANT_SERVER_PORT", "9090")
	t.Setenv("NEUROQUANT_DATABASE_DRIVER", "postgres")
	t.Setenv("NEUROQUANT_DATABASE_HOST", "db.internal")
	t.Setenv("NEUROQUANT_LOGGING_LEVEL", "debug")

	m := newTestManager(t)
	cfg := m.GetConfig()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, m.Validate())
}

func TestManagerValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manager)
		wantErr string
	}{
		{
			"invalid port",
			func(m *Manager) { m.config.Server.Port = -1 },
			"invalid server port",
		},
		{
			"sqlite without path",
			func(m *Manager) { m.config.Database.Path = "" },
			"sqlite database path",
		},
		{
			"unknown driver",
			func(m *Manager) { m.config.Database.Driver = "oracle" },
			"unsupported database driver",
		},
		{
			"postgres without host",
			func(m *Manager) {
				m.config.Database.Driver = "postgres"
				m.config.Database.Host = ""
			},
			"database host",
		},
		{
			"missing segmentation URL",
			func(m *Manager) { m.config.Segmentation.BaseURL = "" },
			"segmentation base URL",
		},
		{
			"invalid log level",
			func(m *Manager) { m.config.Logging.Level = "verbose" },
			"invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			tt.mutate(m)

			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConnectionStrings(t *testing.T) {
	t.Run("sqlite returns the file path", func(t *testing.T) {
		m := newTestManager(t)
		assert.Equal(t, "./data/reports.db", m.GetDatabaseConnectionString())
	})

	t.Run("postgres returns a DSN", func(t *testing.T) {
		m := newTestManager(t)
		m.config.Database.Driver = "postgres"
		m.config.Database.Password = "secret"

		dsn := m.GetDatabaseConnectionString()
		assert.Contains(t, dsn, "host=localhost")
		assert.Contains(t, dsn, "dbname=neuroquant")
		assert.Contains(t, dsn, "sslmode=disable")
	})
}
