package cookies

import (
	"context"
	"fmt"
	"time"

	"roombook/internal/config"
	"roombook/internal/storage"
)

// Store keeps cookies between CLI invocations.
type Store interface {
	List(ctx context.Context, host string) ([]storage.Cookie, error)
	Save(ctx context.Context, c storage.Cookie) error
	Delete(ctx context.Context, host, name, path string) error
	Clear(ctx context.Context, host string) error
	// Expire drops every cookie that expired at or before now.
	Expire(ctx context.Context, now time.Time) error
}

// NewStore builds the store matching cfg. provider may be nil for memory storage.
func NewStore(cfg *config.Storage, provider storage.Provider) (Store, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageSQLite:
		if provider == nil {
			return nil, fmt.Errorf("sqlite cookie store: %w", storage.ErrNoProvider)
		}
		return NewSQLStore(provider), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
