// Package api is the REST transport for the booking backend. It knows the
// endpoints and the {status, data} / {message} envelopes, nothing about
// session state: privileged calls take the access token as an argument.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxErrorBody = 64 * 1024

type Options struct {
	BaseURL string
	// Timeout for a single request. Zero means no timeout.
	Timeout time.Duration
	// Jar holds the backend session cookie between calls.
	Jar http.CookieJar
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// RateLimit is the maximum requests per second. Zero disables pacing.
	RateLimit float64
	RateBurst int

	UserAgent string
	Logger    *slog.Logger
}

type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

// envelope is the success body: {"status": "success", "data": {...}}
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type failure struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("api: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported scheme %q", base.Scheme)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Transport: transport,
			Jar:       opts.Jar,
			Timeout:   opts.Timeout,
		},
		userAgent: opts.UserAgent,
		logger:    logger.With("component", "api"),
	}

	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// do performs one request. body is JSON encoded when non-nil; the data
// member of a successful response is decoded into out when non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Debug("Request failed", "method", method, "path", path, "error", err)
		return &RequestError{Method: method, Path: path, Err: fmt.Errorf("%w: %v", ErrUnreachable, err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var f failure
		_ = json.Unmarshal(raw, &f)
		msg := f.Message
		if msg == "" {
			msg = f.Error
		}
		return newStatusError(method, path, resp.StatusCode, msg)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}
