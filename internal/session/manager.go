// Package session keeps the in-memory access token of one signed in user and
// gates privileged calls behind a refresh-and-retry-once wrapper.
//
// The long-lived session identity is a backend cookie held by the HTTP
// client's jar. This package never reads it; it only asks the backend to
// mint a new access token from it, or to invalidate it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"roombook/internal/api"
	"roombook/internal/model"
)

var (
	// ErrSessionExpired is returned when the session could not be renewed.
	// The manager is Anonymous afterwards.
	ErrSessionExpired = errors.New("session expired, please sign in again")
	ErrNotSignedIn    = errors.New("not signed in")
)

// Backend is the subset of the REST client the manager drives.
type Backend interface {
	Login(ctx context.Context, creds model.Credentials) (api.AuthResult, error)
	LoginWithGoogle(ctx context.Context, displayName, email string) (api.AuthResult, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context) (string, error)
	Me(ctx context.Context, token string) (model.User, error)
}

// Call is one privileged request. It receives the access token to attach.
type Call func(ctx context.Context, token string) error

type Manager struct {
	backend Backend
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
	user  *model.User
	token string
}

func NewManager(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend: backend,
		logger:  logger.With("component", "session"),
		state:   Anonymous,
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the signed in user, or nil when anonymous.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) establish(user *model.User, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user != nil {
		u := *user
		m.user = &u
	}
	m.token = token
	m.state = Authenticated
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.token = ""
	m.state = Anonymous
}

// Login signs in with email and password. On failure the manager stays
// Anonymous and the error carries the server message verbatim.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	return m.authenticate(ctx, func(ctx context.Context) (api.AuthResult, error) {
		return m.backend.Login(ctx, creds)
	})
}

// LoginWithGoogle signs in with an identity already confirmed by the Google popup.
func (m *Manager) LoginWithGoogle(ctx context.Context, displayName, email string) (model.User, error) {
	return m.authenticate(ctx, func(ctx context.Context) (api.AuthResult, error) {
		return m.backend.LoginWithGoogle(ctx, displayName, email)
	})
}

func (m *Manager) authenticate(ctx context.Context, login func(context.Context) (api.AuthResult, error)) (model.User, error) {
	m.setState(Authenticating)

	res, err := login(ctx)
	if err != nil {
		m.clear()
		m.logger.Debug("Login failed", "error", err)
		return model.User{}, err
	}
	if res.AccessToken == "" {
		m.clear()
		return model.User{}, fmt.Errorf("login: %w", api.ErrMalformedResponse)
	}

	m.establish(&res.User, res.AccessToken)
	m.logger.Info("Signed in", "email", res.User.Email, "role", res.User.Role)
	return res.User, nil
}

// Logout invalidates the session on the backend, best effort, and always
// clears the local state.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.backend.Logout(ctx); err != nil {
		m.logger.Warn("Backend logout failed", "error", err)
	}
	m.clear()
	m.logger.Info("Signed out")
}

// Refresh mints a new access token from the session cookie. On failure the
// session is cleared and ErrSessionExpired is returned.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.setState(Refreshing)

	token, err := m.backend.RefreshToken(ctx)
	if err != nil {
		m.clear()
		m.logger.Info("Session refresh failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	m.establish(nil, token)
	m.logger.Debug("Access token refreshed")
	return token, nil
}

// Restore recovers a session from the persisted cookie: it refreshes the
// access token and then loads the user it belongs to.
func (m *Manager) Restore(ctx context.Context) (model.User, error) {
	if _, err := m.Refresh(ctx); err != nil {
		return model.User{}, err
	}

	var user model.User
	err := m.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		user, err = m.backend.Me(ctx, token)
		return err
	})
	if err != nil {
		return model.User{}, err
	}

	m.establish(&user, m.Token())
	return user, nil
}

// Do runs call with the current access token. An authentication failure is
// answered with exactly one Refresh and one replay; a second authentication
// failure ends the session with ErrSessionExpired. Other errors are returned
// untouched and never retried.
func (m *Manager) Do(ctx context.Context, call Call) error {
	const maxRetries = 1

	token := m.Token()
	for attempt := 0; ; attempt++ {
		err := call(ctx, token)
		if err == nil || !api.IsAuthError(err) {
			return err
		}
		if attempt >= maxRetries {
			m.clear()
			m.logger.Info("Request rejected after refresh, session ended", "error", err)
			return fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}

		token, err = m.Refresh(ctx)
		if err != nil {
			return err
		}
	}
}

// Claims decodes the current access token without verifying it. Display only.
func (m *Manager) Claims() (*jwt.RegisteredClaims, error) {
	token := m.Token()
	if token == "" {
		return nil, ErrNotSignedIn
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}
	return claims, nil
}
