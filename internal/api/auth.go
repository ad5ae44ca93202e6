package api

import (
	"context"
	"net/http"
	"net/url"

	"roombook/internal/model"
)

// AuthResult is returned by the login style endpoints.
type AuthResult struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"accessToken"`
}

func (c *Client) Register(ctx context.Context, creds model.Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", "", creds, nil)
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", creds, &res)
	return res, err
}

// LoginWithGoogle exchanges an identity confirmed by the Google popup for a session.
func (c *Client) LoginWithGoogle(ctx context.Context, displayName, email string) (AuthResult, error) {
	body := map[string]string{"displayName": displayName, "email": email}
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/google", "", body, &res)
	return res, err
}

// Logout asks the backend to invalidate the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", "", struct{}{}, nil)
}

// Me returns the user bound to the session.
func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	var res struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &res)
	return res.User, err
}

// RefreshToken mints a new access token from the session cookie alone.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/refresh-token", "", nil, &res); err != nil {
		return "", err
	}
	if res.AccessToken == "" {
		return "", &RequestError{Method: http.MethodGet, Path: "/api/auth/refresh-token", StatusCode: http.StatusOK, Err: ErrMalformedResponse}
	}
	return res.AccessToken, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	path := "/api/auth/reset-password/" + url.PathEscape(resetToken)
	return c.do(ctx, http.MethodPost, path, "", map[string]string{"password": password}, nil)
}
