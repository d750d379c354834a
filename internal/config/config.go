package config

import (
	"os"
	"strconv"

	"zmean/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Study    StudyConfig
	Data     DataConfig
}

// DatabaseConfig holds database connection settings. URL empty means the
// application runs on the in-memory ledger.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// StudyConfig holds the default study parameters applied when a request
// leaves them unset
type StudyConfig struct {
	Alpha          float64
	Tail           string
	MaxConcurrent  int64
	SimulationSize int
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	SampleFile string
	SheetName  string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Study:    loadStudyConfig(),
		Data:     loadDataConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadStudyConfig() StudyConfig {
	return StudyConfig{
		Alpha:          getEnvFloatOrDefault("STUDY_ALPHA", 0.05),
		Tail:           getEnvOrDefault("STUDY_TAIL", "right"),
		MaxConcurrent:  int64(getEnvIntOrDefault("STUDY_MAX_CONCURRENT", 8)),
		SimulationSize: getEnvIntOrDefault("STUDY_SIMULATION_DRAWS", 10000),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		SampleFile: getEnvOrDefault("SAMPLE_FILE", ""),
		SheetName:  getEnvOrDefault("SAMPLE_SHEET", "Sheet1"),
	}
}

func validateConfig(config *Config) error {
	if config.Study.Alpha <= 0 || config.Study.Alpha >= 1 {
		return errors.ConfigInvalid("STUDY_ALPHA must be in (0, 1)")
	}
	if config.Study.MaxConcurrent <= 0 {
		return errors.ConfigInvalid("STUDY_MAX_CONCURRENT must be > 0")
	}
	if config.Study.SimulationSize <= 0 {
		return errors.ConfigInvalid("STUDY_SIMULATION_DRAWS must be > 0")
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
