package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "DATABASE_DRIVER", "DATABASE_URL", "DB_MAX_OPEN_CONNS",
		"DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "AUTO_MIGRATE", "SCHEMA_OUTPUT",
		"GRAPHQL_MAX_DEPTH", "AUTH_JWT_SECRET", "AUTH_ISSUER", "LOG_LEVEL", "CRM_CONFIG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	chdir(t, t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "4010", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 10, cfg.GraphQLMaxDepth)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "file:crm.db")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30s")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, 30*time.Second, cfg.ConnMaxLifetime)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 25, cfg.MaxOpenConns, "unparsable values keep the default")
	assert.True(t, cfg.AuthEnabled())
	require.NoError(t, cfg.Validate())

	db := cfg.Database()
	assert.Equal(t, "sqlite3", db.Driver)
	assert.Equal(t, "file:crm.db", db.URL)
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "crm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
databaseDriver: sqlite3
databaseURL: file:from-yaml.db
connMaxLifetime: 1m
logLevel: debug
`), 0o644))
	t.Setenv("DATABASE_URL", "file:from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, "file:from-env.db", cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("DATABASE_URL=postgres://localhost/crm\nPORT=4999\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("PORT")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/crm", cfg.DatabaseURL)
	assert.Equal(t, "4999", cfg.Port)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) { c.DatabaseURL = "postgres://x" }, ""},
		{"missing url", func(c *Config) {}, "DATABASE_URL is required"},
		{"bad driver", func(c *Config) { c.DatabaseURL = "x"; c.DatabaseDriver = "mysql" }, "unsupported DATABASE_DRIVER"},
		{"empty port", func(c *Config) { c.DatabaseURL = "x"; c.Port = "" }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
