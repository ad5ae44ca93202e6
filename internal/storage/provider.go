package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"roombook/internal/config"
)

// LatestVersion migrates to the newest embedded schema.
const LatestVersion = -1

type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)
	Migrate(ctx context.Context, target int) error

	// Cookie-related methods
	ListCookies(ctx context.Context, host string) ([]Cookie, error)
	SaveCookie(ctx context.Context, cookie Cookie) error
	DeleteCookie(ctx context.Context, host, name, path string) error
	DeleteHostCookies(ctx context.Context, host string) error
	ExpireCookies(ctx context.Context, now time.Time) (int64, error)
}

// NewProvider opens the configured database and brings its schema up to date.
// Memory storage needs no database and yields ErrNoProvider.
func NewProvider(ctx context.Context, cfg *config.Storage, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case config.StorageSQLite:
		provider, err := NewSQLiteProvider(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := provider.Migrate(ctx, LatestVersion); err != nil {
			provider.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return provider, nil

	case config.StorageMemory:
		return nil, ErrNoProvider

	default:
		logger.Error("Unsupported storage configuration", "type", cfg.Type)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStorageProvider, cfg.Type)
	}
}
