// Package backend selects and constructs the persistence backend.
package backend

import (
	"fmt"
	"log/slog"

	"pennywise/internal/storage"
	"pennywise/internal/storage/memory"
)

// Type names a persistence backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds backend construction parameters.
type Config struct {
	Type Type

	// SQLite specific
	DBPath string
}

// Result carries the constructed store and an optional cleanup function.
type Result struct {
	Store   storage.Store
	Cleanup func() error
}

// New constructs the store named by config. The memory backend is for demos
// and tests; state is lost on shutdown.
func New(config Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", config.DBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		store := memory.NewWithDefaults()
		logger.Info("Initialized memory backend")
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
