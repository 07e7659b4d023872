package config

import (
	"os"
	"strconv"
	"strings"

	"stikpet/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig `validate:"required"`
	Data     DataConfig
	Stats    StatsConfig `validate:"required"`
	LogLevel string      `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// analyses in memory.
type DatabaseConfig struct {
	URL          string `validate:"omitempty,url"`
	MaxOpenConns int    `validate:"gte=0"`
	ResetOnBoot  bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
	OpsPort string `validate:"required,numeric,nefield=Port"`
}

// DataConfig holds data file settings
type DataConfig struct {
	File string
}

// StatsConfig holds defaults for the statistical procedures
type StatsConfig struct {
	Alpha             float64 `validate:"gt=0,lt=1"`
	KendallExactLimit int     `validate:"gte=2,lte=60"`
	MaxConcurrency    int     `validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:          getEnvOrDefault("DATABASE_URL", ""),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			ResetOnBoot:  getEnvBoolOrDefault("DB_RESET_ON_BOOT", false),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
			OpsPort: getEnvOrDefault("OPS_PORT", "6060"),
		},
		Data: DataConfig{
			File: getEnvOrDefault("DATA_FILE", ""),
		},
		Stats: StatsConfig{
			Alpha:             getEnvFloatOrDefault("ALPHA", 0.05),
			KendallExactLimit: getEnvIntOrDefault("KENDALL_EXACT_LIMIT", 50),
			MaxConcurrency:    getEnvIntOrDefault("MAX_CONCURRENCY", 0),
		},
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
