// Package cli provides common bootstrap helpers for the binaries.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"pennywise/internal/backend"
	"pennywise/internal/config"
	"pennywise/internal/storage"
)

// SetupLogger initializes structured logging and sets the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore constructs the configured persistence backend or exits.
func OpenStore(logger *slog.Logger, cfg *config.Config) (storage.Store, func() error) {
	result, err := backend.New(backend.Config{
		Type:   backend.Type(cfg.DataBackend),
		DBPath: cfg.DBPath,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result.Store, result.Cleanup
}
