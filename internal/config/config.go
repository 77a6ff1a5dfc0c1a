// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for the fixture database and snapshots (always absolute)
	Port        int
	DevMode     bool
	LogLevel    string
	APIBaseURL  string // Portfolio data API base URL; ignored when EmbeddedAPI is set
	EmbeddedAPI bool   // Serve the fixture-backed data API from this process
	RefreshCron string // Cron expression for scheduled refreshes; empty disables the scheduler
	FixtureSeed int64  // Seed for deterministic fixture generation
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	// 1. Check FOLIODASH_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("FOLIODASH_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		Port:        getEnvAsInt("PORT", 8080),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:3000"),
		EmbeddedAPI: getEnvAsBool("EMBEDDED_API", true),
		RefreshCron: getEnv("REFRESH_CRON", ""),
		FixtureSeed: getEnvAsInt64("FIXTURE_SEED", 42),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if !c.EmbeddedAPI && c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required when EMBEDDED_API is disabled")
	}
	return nil
}

// FixtureDBPath returns the path of the embedded fixture database.
func (c *Config) FixtureDBPath() string {
	return filepath.Join(c.DataDir, "fixture.db")
}

// SnapshotPath returns the path of the persisted state snapshot.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "snapshot.msgpack")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
