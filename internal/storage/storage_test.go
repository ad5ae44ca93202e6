package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"roombook/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(t *testing.T) Provider {
	t.Helper()
	cfg := &config.Storage{
		Type:   config.StorageSQLite,
		SQLite: config.SQLiteStorage{Path: filepath.Join(t.TempDir(), "nested", "cookies.db")},
	}
	p, err := NewProvider(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestMigrationsReachLatest(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	latest, err := NewMigrationRunner("sqlite3", quietLogger()).GetLatestMigrationVersion()
	if err != nil {
		t.Fatalf("GetLatestMigrationVersion: %v", err)
	}
	version, err := p.GetSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetSchemaVersion: %v", err)
	}
	if latest < 1 || version != latest {
		t.Fatalf("schema version = %d, latest = %d", version, latest)
	}

	// Running again is a no-op
	if err := p.Migrate(ctx, LatestVersion); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	if err := p.Migrate(ctx, 0); err != nil {
		t.Fatalf("Migrate down: %v", err)
	}
	if version, _ := p.GetSchemaVersion(ctx); version != 0 {
		t.Fatalf("version after rollback = %d", version)
	}
	if _, err := p.ListCookies(ctx, "example.com"); err == nil {
		t.Fatalf("cookies table should be gone after rollback")
	}
}

func TestLoadMigrationsOrder(t *testing.T) {
	mr := NewMigrationRunner("sqlite3", quietLogger())
	if _, err := mr.LoadMigrations(1, 1); !errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		t.Fatalf("same version err = %v", err)
	}
	up, err := mr.LoadMigrations(0, LatestVersion)
	if err != nil {
		t.Fatalf("LoadMigrations up: %v", err)
	}
	for i, m := range up {
		if !m.Up || m.Version != i+1 {
			t.Fatalf("unexpected up migration %d: %+v", i, m)
		}
	}
	if _, err := NewMigrationRunner("postgres", nil).LoadMigrations(0, 1); err == nil {
		t.Fatalf("unsupported driver accepted")
	}
}

func TestSaveAndListCookies(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	expires := time.Now().Add(7 * 24 * time.Hour)

	c := Cookie{Host: "rooms.example.com", Name: "refreshToken", Value: "v1", Path: "/", HttpOnly: true, ExpiresAt: &expires}
	if err := p.SaveCookie(ctx, c); err != nil {
		t.Fatalf("SaveCookie: %v", err)
	}
	c.Value = "v2"
	if err := p.SaveCookie(ctx, c); err != nil {
		t.Fatalf("SaveCookie replace: %v", err)
	}
	if err := p.SaveCookie(ctx, Cookie{Host: "other.example.com", Name: "x", Value: "y", Path: "/"}); err != nil {
		t.Fatalf("SaveCookie other host: %v", err)
	}

	cookies, err := p.ListCookies(ctx, "rooms.example.com")
	if err != nil {
		t.Fatalf("ListCookies: %v", err)
	}
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	got := cookies[0]
	if got.Value != "v2" || !got.HttpOnly || got.ExpiresAt == nil {
		t.Fatalf("unexpected cookie: %+v", got)
	}
	if !got.ExpiresAt.Equal(expires.UTC().Truncate(time.Second)) {
		t.Fatalf("expires = %v, want %v", got.ExpiresAt, expires)
	}

	if err := p.DeleteCookie(ctx, "rooms.example.com", "refreshToken", "/"); err != nil {
		t.Fatalf("DeleteCookie: %v", err)
	}
	if cookies, _ := p.ListCookies(ctx, "rooms.example.com"); len(cookies) != 0 {
		t.Fatalf("cookie not deleted: %+v", cookies)
	}
	if err := p.DeleteHostCookies(ctx, "other.example.com"); err != nil {
		t.Fatalf("DeleteHostCookies: %v", err)
	}
	if cookies, _ := p.ListCookies(ctx, "other.example.com"); len(cookies) != 0 {
		t.Fatalf("host cookies not deleted: %+v", cookies)
	}
}

func TestExpireCookies(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	for _, c := range []Cookie{
		{Host: "h", Name: "old", Value: "1", Path: "/", ExpiresAt: &past},
		{Host: "h", Name: "new", Value: "2", Path: "/", ExpiresAt: &future},
		{Host: "h", Name: "session", Value: "3", Path: "/"},
	} {
		if err := p.SaveCookie(ctx, c); err != nil {
			t.Fatalf("SaveCookie %s: %v", c.Name, err)
		}
	}

	n, err := p.ExpireCookies(ctx, now)
	if err != nil {
		t.Fatalf("ExpireCookies: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d cookies, want 1", n)
	}
	cookies, _ := p.ListCookies(ctx, "h")
	if len(cookies) != 2 {
		t.Fatalf("remaining cookies = %d, want 2", len(cookies))
	}
}

func TestMemoryStorageHasNoProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), &config.Storage{Type: config.StorageMemory}, quietLogger())
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
	_, err = NewProvider(context.Background(), &config.Storage{Type: "etcd"}, quietLogger())
	if !errors.Is(err, ErrInvalidStorageProvider) {
		t.Fatalf("err = %v, want ErrInvalidStorageProvider", err)
	}
}
