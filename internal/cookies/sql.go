package cookies

import (
	"context"
	"time"

	"roombook/internal/storage"
)

// SQLStore keeps cookies in the storage provider's database.
type SQLStore struct {
	storage storage.Provider
}

func NewSQLStore(provider storage.Provider) *SQLStore {
	return &SQLStore{storage: provider}
}

func (s *SQLStore) List(ctx context.Context, host string) ([]storage.Cookie, error) {
	return s.storage.ListCookies(ctx, host)
}

func (s *SQLStore) Save(ctx context.Context, c storage.Cookie) error {
	return s.storage.SaveCookie(ctx, c)
}

func (s *SQLStore) Delete(ctx context.Context, host, name, path string) error {
	return s.storage.DeleteCookie(ctx, host, name, path)
}

func (s *SQLStore) Clear(ctx context.Context, host string) error {
	return s.storage.DeleteHostCookies(ctx, host)
}

func (s *SQLStore) Expire(ctx context.Context, now time.Time) error {
	_, err := s.storage.ExpireCookies(ctx, now)
	return err
}
