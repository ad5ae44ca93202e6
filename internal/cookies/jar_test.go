package cookies

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"roombook/internal/config"
	"roombook/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return u
}

func names(cookies []*http.Cookie) map[string]string {
	out := make(map[string]string)
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out
}

func testJar(t *testing.T, jar *Jar) {
	t.Helper()
	base := mustURL(t, "http://rooms.example.com/api/auth/login")

	jar.SetCookies(base, []*http.Cookie{
		{Name: "refreshToken", Value: "r1", Path: "/", HttpOnly: true, MaxAge: 3600},
		{Name: "scoped", Value: "s1", Path: "/api/auth"},
		{Name: "secure", Value: "x", Path: "/", Secure: true},
	})

	got := names(jar.Cookies(mustURL(t, "http://rooms.example.com/api/auth/refresh-token")))
	if got["refreshToken"] != "r1" || got["scoped"] != "s1" {
		t.Fatalf("cookies for auth path = %v", got)
	}
	if _, ok := got["secure"]; ok {
		t.Fatalf("secure cookie sent over http")
	}

	got = names(jar.Cookies(mustURL(t, "http://rooms.example.com/api/meeting-rooms")))
	if _, ok := got["scoped"]; ok {
		t.Fatalf("path scoped cookie leaked: %v", got)
	}
	if got["refreshToken"] != "r1" {
		t.Fatalf("root cookie missing: %v", got)
	}

	if got := jar.Cookies(mustURL(t, "http://elsewhere.example.com/")); len(got) != 0 {
		t.Fatalf("cookies leaked to another host: %v", got)
	}

	// Replacement and removal
	jar.SetCookies(base, []*http.Cookie{{Name: "refreshToken", Value: "r2", Path: "/"}})
	if got := names(jar.Cookies(base)); got["refreshToken"] != "r2" {
		t.Fatalf("cookie not replaced: %v", got)
	}
	jar.SetCookies(base, []*http.Cookie{{Name: "refreshToken", Path: "/", MaxAge: -1}})
	if _, ok := names(jar.Cookies(base))["refreshToken"]; ok {
		t.Fatalf("cookie not removed by negative Max-Age")
	}

	if err := jar.Clear(context.Background(), base); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := jar.Cookies(mustURL(t, "https://rooms.example.com/api/auth/x")); len(got) != 0 {
		t.Fatalf("cookies left after Clear: %v", got)
	}
}

func TestMemoryJar(t *testing.T) {
	testJar(t, NewJar(NewMemoryStore(), quietLogger()))
}

func TestSQLJar(t *testing.T) {
	cfg := &config.Storage{
		Type:   config.StorageSQLite,
		SQLite: config.SQLiteStorage{Path: filepath.Join(t.TempDir(), "cookies.db")},
	}
	provider, err := storage.NewProvider(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer provider.Close()

	store, err := NewStore(cfg, provider)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	testJar(t, NewJar(store, quietLogger()))
}

func TestJarSurvivesReopen(t *testing.T) {
	cfg := &config.Storage{
		Type:   config.StorageSQLite,
		SQLite: config.SQLiteStorage{Path: filepath.Join(t.TempDir(), "cookies.db")},
	}
	u := mustURL(t, "http://rooms.example.com/api/auth/login")

	provider, err := storage.NewProvider(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	NewJar(NewSQLStore(provider), quietLogger()).SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "keep", Path: "/", MaxAge: 600}})
	provider.Close()

	provider, err = storage.NewProvider(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer provider.Close()
	if got := names(NewJar(NewSQLStore(provider), quietLogger()).Cookies(u)); got["refreshToken"] != "keep" {
		t.Fatalf("cookie lost across reopen: %v", got)
	}
}

func TestPrune(t *testing.T) {
	store := NewMemoryStore()
	jar := NewJar(store, quietLogger())
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	jar.now = func() time.Time { return start }

	u := mustURL(t, "http://h/")
	jar.SetCookies(u, []*http.Cookie{{Name: "short", Value: "1", MaxAge: 60}, {Name: "long", Value: "2", MaxAge: 3600}})

	jar.now = func() time.Time { return start.Add(10 * time.Minute) }
	if got := names(jar.Cookies(u)); len(got) != 1 || got["long"] != "2" {
		t.Fatalf("expired cookie served: %v", got)
	}
	if err := jar.Prune(context.Background()); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if left, _ := store.List(context.Background(), "h"); len(left) != 1 {
		t.Fatalf("store holds %d cookies after prune, want 1", len(left))
	}
}

func TestNewStoreRejectsMissingProvider(t *testing.T) {
	if _, err := NewStore(&config.Storage{Type: config.StorageSQLite}, nil); err == nil {
		t.Fatalf("sqlite store without provider accepted")
	}
	if s, err := NewStore(&config.Storage{Type: config.StorageMemory}, nil); err != nil || s == nil {
		t.Fatalf("memory store: %v", err)
	}
}
