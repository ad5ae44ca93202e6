package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"roombook/internal/api"
	"roombook/internal/model"
)

type stubBackend struct {
	loginResult  api.AuthResult
	loginErr     error
	logoutErr    error
	refreshToken string
	refreshErr   error
	me           model.User

	logins    int
	logouts   int
	refreshes int
}

func (s *stubBackend) Login(ctx context.Context, creds model.Credentials) (api.AuthResult, error) {
	s.logins++
	return s.loginResult, s.loginErr
}

func (s *stubBackend) LoginWithGoogle(ctx context.Context, displayName, email string) (api.AuthResult, error) {
	s.logins++
	return s.loginResult, s.loginErr
}

func (s *stubBackend) Logout(ctx context.Context) error {
	s.logouts++
	return s.logoutErr
}

func (s *stubBackend) RefreshToken(ctx context.Context) (string, error) {
	s.refreshes++
	return s.refreshToken, s.refreshErr
}

func (s *stubBackend) Me(ctx context.Context, token string) (model.User, error) {
	if token != s.refreshToken {
		return model.User{}, unauthorized()
	}
	return s.me, nil
}

func unauthorized() error {
	return &api.RequestError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized", Err: api.ErrUnauthorized}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedIn(t *testing.T, backend *stubBackend) *Manager {
	t.Helper()
	backend.loginResult = api.AuthResult{User: model.User{ID: "u1", Email: "ada@example.com"}, AccessToken: "token-1"}
	m := NewManager(backend, quietLogger())
	if _, err := m.Login(context.Background(), model.Credentials{Email: "ada@example.com", Password: "x"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	return m
}

func TestLoginSuccess(t *testing.T) {
	backend := &stubBackend{}
	m := signedIn(t, backend)

	if m.State() != Authenticated {
		t.Fatalf("state = %s, want authenticated", m.State())
	}
	if m.Token() != "token-1" {
		t.Fatalf("token = %q", m.Token())
	}
	if u := m.User(); u == nil || u.Email != "ada@example.com" {
		t.Fatalf("user = %+v", u)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	backend := &stubBackend{loginErr: &api.RequestError{StatusCode: http.StatusBadRequest, Message: "Invalid email or password"}}
	m := NewManager(backend, quietLogger())

	_, err := m.Login(context.Background(), model.Credentials{Email: "ada@example.com", Password: "wrong"})
	if err == nil {
		t.Fatalf("expected login error")
	}
	if m.State() != Anonymous {
		t.Fatalf("state = %s, want anonymous", m.State())
	}
	if got := api.Message(err); got != "Invalid email or password" {
		t.Fatalf("message = %q", got)
	}
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	backend := &stubBackend{logoutErr: errors.New("connection refused")}
	m := signedIn(t, backend)

	m.Logout(context.Background())

	if backend.logouts != 1 {
		t.Fatalf("logout calls = %d", backend.logouts)
	}
	if m.State() != Anonymous || m.Token() != "" || m.User() != nil {
		t.Fatalf("session not cleared: state=%s token=%q", m.State(), m.Token())
	}
}

func TestDoRefreshesOnceAndReplays(t *testing.T) {
	backend := &stubBackend{refreshToken: "token-2"}
	m := signedIn(t, backend)

	var seen []string
	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		seen = append(seen, token)
		if token != "token-2" {
			return unauthorized()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(seen) != 2 || seen[0] != "token-1" || seen[1] != "token-2" {
		t.Fatalf("tokens used = %v", seen)
	}
	if backend.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", backend.refreshes)
	}
	if m.State() != Authenticated || m.User() == nil {
		t.Fatalf("user lost on refresh, state=%s", m.State())
	}
}

func TestDoRefreshFailureExpiresSession(t *testing.T) {
	backend := &stubBackend{refreshErr: unauthorized()}
	m := signedIn(t, backend)

	calls := 0
	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		calls++
		return unauthorized()
	})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want session expired", err)
	}
	if calls != 1 {
		t.Fatalf("request attempted %d times, want 1", calls)
	}
	if backend.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", backend.refreshes)
	}
	if m.State() != Anonymous || m.Token() != "" || m.User() != nil {
		t.Fatalf("session not cleared")
	}
}

func TestDoSecondAuthFailureIsNotRetried(t *testing.T) {
	backend := &stubBackend{refreshToken: "token-2"}
	m := signedIn(t, backend)

	calls := 0
	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		calls++
		return unauthorized()
	})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want session expired", err)
	}
	if calls != 2 || backend.refreshes != 1 {
		t.Fatalf("calls=%d refreshes=%d, want 2 and 1", calls, backend.refreshes)
	}
	if m.State() != Anonymous {
		t.Fatalf("state = %s, want anonymous", m.State())
	}
}

func TestDoDoesNotRetryOtherErrors(t *testing.T) {
	backend := &stubBackend{refreshToken: "token-2"}
	m := signedIn(t, backend)

	want := &api.RequestError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	calls := 0
	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if calls != 1 || backend.refreshes != 0 {
		t.Fatalf("calls=%d refreshes=%d", calls, backend.refreshes)
	}
	if m.State() != Authenticated {
		t.Fatalf("state changed to %s", m.State())
	}
}

func TestRestore(t *testing.T) {
	backend := &stubBackend{refreshToken: "token-9", me: model.User{ID: "u1", Email: "ada@example.com", Role: model.RoleAdmin}}
	m := NewManager(backend, quietLogger())

	user, err := m.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !user.IsAdmin() || m.State() != Authenticated || m.Token() != "token-9" {
		t.Fatalf("unexpected session: user=%+v state=%s", user, m.State())
	}
}

func TestRestoreWithoutCookie(t *testing.T) {
	backend := &stubBackend{refreshErr: unauthorized()}
	m := NewManager(backend, quietLogger())

	if _, err := m.Restore(context.Background()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want session expired", err)
	}
	if m.State() != Anonymous {
		t.Fatalf("state = %s", m.State())
	}
}

func TestClaims(t *testing.T) {
	expires := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	backend := &stubBackend{loginResult: api.AuthResult{User: model.User{ID: "u1"}, AccessToken: token}}
	m := NewManager(backend, quietLogger())
	if _, err := m.Claims(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("anonymous Claims err = %v", err)
	}
	if _, err := m.Login(context.Background(), model.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := m.Claims()
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.Subject != "u1" || !claims.ExpiresAt.Time.Equal(expires) {
		t.Fatalf("claims = %+v", claims)
	}
}
