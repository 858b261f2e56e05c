// Package config provides configuration management for the accounts service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/slgMitch/fidelity-interview/internal/database"
)

// Config holds all configuration for the service.
type Config struct {
	// Server settings
	Port    string `yaml:"port"`
	GinMode string `yaml:"ginMode"`

	// Database settings
	DatabaseDriver  string        `yaml:"databaseDriver"`
	DatabaseURL     string        `yaml:"databaseURL"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	AutoMigrate     bool          `yaml:"autoMigrate"`

	// GraphQL settings
	SchemaOutput    string `yaml:"schemaOutput"`
	GraphQLMaxDepth int    `yaml:"graphqlMaxDepth"`

	// Auth settings
	AuthJWTSecret string `yaml:"authJWTSecret"`
	AuthIssuer    string `yaml:"authIssuer"`

	LogLevel string `yaml:"logLevel"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	db := database.DefaultConfig()
	return &Config{
		Port:            "4010",
		GinMode:         "release",
		DatabaseDriver:  db.Driver,
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
		AutoMigrate:     true,
		GraphQLMaxDepth: 10,
		LogLevel:        "info",
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file at path (if any) and environment variables. Local .env files
// are loaded into the environment first.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	if path == "" {
		path = os.Getenv("CRM_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// loadEnvFiles reads .env and .env.local if present. Variables already set in
// the process environment win.
func loadEnvFiles() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Load(file)
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)

	c.DatabaseDriver = getEnv("DATABASE_DRIVER", c.DatabaseDriver)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.MaxOpenConns)
	c.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.MaxIdleConns)
	c.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", c.ConnMaxLifetime)
	c.AutoMigrate = getEnvBool("AUTO_MIGRATE", c.AutoMigrate)

	c.SchemaOutput = getEnv("SCHEMA_OUTPUT", c.SchemaOutput)
	c.GraphQLMaxDepth = getEnvInt("GRAPHQL_MAX_DEPTH", c.GraphQLMaxDepth)

	c.AuthJWTSecret = getEnv("AUTH_JWT_SECRET", c.AuthJWTSecret)
	c.AuthIssuer = getEnv("AUTH_ISSUER", c.AuthIssuer)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks the settings needed to reach the database.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want %s or %s)",
			c.DatabaseDriver, database.DriverPostgres, database.DriverSQLite)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

// Database returns the connection settings for database.Open.
func (c *Config) Database() database.Config {
	return database.Config{
		Driver:          c.DatabaseDriver,
		URL:             c.DatabaseURL,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// AuthEnabled reports whether /graphql requires a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.AuthJWTSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
