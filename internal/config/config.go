// Package config loads pipeline configuration from the environment.
// CLI flags override whatever is loaded here.
package config

import (
	"os"
)

// Config represents the complete pipeline configuration
type Config struct {
	Paths    PathConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// PathConfig holds the export input and artifact output directories
type PathConfig struct {
	InputDir  string
	OutputDir string
}

// ServerConfig holds review server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds archive store settings; empty URL means the archive
// is not configured, which only the ingest command cares about
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables, applying defaults
// where unset
func Load() *Config {
	return &Config{
		Paths: PathConfig{
			InputDir:  getEnvOrDefault("BSPACE_INPUT_DIR", "data/raw"),
			OutputDir: getEnvOrDefault("BSPACE_OUTPUT_DIR", "data/processed"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("BSPACE_SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("BSPACE_DATABASE_URL"),
		},
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
