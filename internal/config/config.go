package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"

	defaultPort        = "8080"
	defaultBackend     = BackendCSV
	defaultSamplesPath = "./samples.csv"
	defaultDBPath      = "./samples.db"
	defaultLogLevel    = "info"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port          string
	StoreBackend  string
	SamplesPath   string
	DBPath        string
	ImportCSVPath string
	TablesPath    string
	LogLevel      string
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := Config{
		Port:          getenvWithDefault("PORT", defaultPort),
		StoreBackend:  strings.ToLower(getenvWithDefault("STORE_BACKEND", defaultBackend)),
		SamplesPath:   getenvWithDefault("SAMPLES_PATH", defaultSamplesPath),
		DBPath:        getenvWithDefault("DB_PATH", defaultDBPath),
		ImportCSVPath: os.Getenv("IMPORT_CSV_PATH"),
		TablesPath:    os.Getenv("TABLES_PATH"),
		LogLevel:      strings.ToLower(getenvWithDefault("LOG_LEVEL", defaultLogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendCSV, BackendSQLite, c.StoreBackend)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.ImportCSVPath != "" && c.StoreBackend != BackendSQLite {
		log.Print("warning: IMPORT_CSV_PATH is only used with the sqlite backend")
	}
	return nil
}

// StorePath returns the file the selected backend persists to.
func (c Config) StorePath() string {
	if c.StoreBackend == BackendSQLite {
		return c.DBPath
	}
	return c.SamplesPath
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
