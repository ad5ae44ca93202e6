package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"roombook/internal/config"
)

type SQLiteProvider struct {
	*SQLProvider
}

func NewSQLiteProvider(cfg *config.Storage, logger *slog.Logger) (*SQLiteProvider, error) {
	path := cfg.SQLite.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage folder: %w", err)
		}
	}

	// A single connection keeps ":memory:" databases alive between queries.
	provider, err := NewSQLProvider("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on", logger)
	if err != nil {
		return nil, err
	}
	provider.db.SetMaxOpenConns(1)

	return &SQLiteProvider{SQLProvider: provider}, nil
}
