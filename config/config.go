// Package config provides configuration for the ledger agent service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// BaseURL is the external root under which agent service URIs are
	// addressed.
	BaseURL string `yaml:"base_url"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// LedgerNodeURL points at a remote ledger node daemon. Empty means
	// the embedded in-process provider.
	LedgerNodeURL string `yaml:"ledger_node_url"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Load builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:    8080,
		BaseURL:     "http://localhost:8080/ledger-agents",
		DatabaseURL: "file:ledgergate.db?cache=shared&mode=rwc",
		LogLevel:    "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LedgerNodeURL = getEnv("LEDGER_NODE_URL", cfg.LedgerNodeURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
