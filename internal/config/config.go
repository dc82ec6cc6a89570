package config

import (
	"os"
	"strconv"

	"psimodal/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Data      DataConfig
	Estimator EstimatorConfig
	Bootstrap BootstrapConfig
}

// DatabaseConfig holds database connection settings. URL may be empty, in
// which case runs are kept in memory only.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data ingest settings
type DataConfig struct {
	PSIFile string
}

// EstimatorConfig holds the default bin-edge settings
type EstimatorConfig struct {
	ExcludedMax float64
	IncludedMin float64
}

// BootstrapConfig holds the default bootstrap settings
type BootstrapConfig struct {
	NIter      int
	Thresh     float64
	MinSamples int
	Seed       int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			PSIFile: getEnvOrDefault("PSI_FILE", ""),
		},
		Estimator: EstimatorConfig{
			ExcludedMax: getEnvFloatOrDefault("EXCLUDED_MAX", 0.2),
			IncludedMin: getEnvFloatOrDefault("INCLUDED_MIN", 0.8),
		},
		Bootstrap: BootstrapConfig{
			NIter:      getEnvIntOrDefault("BOOTSTRAP_N_ITER", 100),
			Thresh:     getEnvFloatOrDefault("BOOTSTRAP_THRESH", 0.6),
			MinSamples: getEnvIntOrDefault("BOOTSTRAP_MIN_SAMPLES", 10),
			Seed:       int64(getEnvIntOrDefault("BOOTSTRAP_SEED", 0)),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Estimator.ExcludedMax < 0 || config.Estimator.IncludedMin > 1 ||
		config.Estimator.ExcludedMax >= config.Estimator.IncludedMin {
		return errors.ConfigInvalid("EXCLUDED_MAX must be below INCLUDED_MIN within [0, 1]")
	}
	if config.Bootstrap.NIter <= 0 {
		return errors.ConfigInvalid("BOOTSTRAP_N_ITER must be positive")
	}
	if config.Bootstrap.Thresh <= 0 || config.Bootstrap.Thresh > 1 {
		return errors.ConfigInvalid("BOOTSTRAP_THRESH must be in (0, 1]")
	}
	if config.Bootstrap.MinSamples < 1 {
		return errors.ConfigInvalid("BOOTSTRAP_MIN_SAMPLES must be at least 1")
	}
	return nil
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
