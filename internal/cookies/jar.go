// Package cookies provides the persistent cookie jar behind the REST client.
// It carries the backend's long-lived session cookie from one CLI invocation
// to the next. Cookies are host-only: the Domain attribute is stored but never
// widens matching.
package cookies

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roombook/internal/storage"
)

// storeTimeout bounds each store call made from the http.CookieJar methods,
// which carry no context of their own.
const storeTimeout = 5 * time.Second

type Jar struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

var _ http.CookieJar = (*Jar)(nil)

func NewJar(store Store, logger *slog.Logger) *Jar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Jar{
		store:  store,
		logger: logger.With("component", "cookiejar"),
		now:    time.Now,
	}
}

// SetCookies stores the cookies received in a response from u. Cookies that
// are already expired, or carry a negative Max-Age, are removed instead.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	host := u.Hostname()
	now := j.now()
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}

		var expires *time.Time
		switch {
		case c.MaxAge < 0:
			expires = &now
		case c.MaxAge > 0:
			exp := now.Add(time.Duration(c.MaxAge) * time.Second)
			expires = &exp
		case !c.Expires.IsZero():
			exp := c.Expires
			expires = &exp
		}

		if expires != nil && !expires.After(now) {
			if err := j.store.Delete(ctx, host, c.Name, path); err != nil {
				j.logger.Error("Failed to delete cookie", "name", c.Name, "error", err)
			}
			j.logger.Debug("Cookie removed", "host", host, "name", c.Name)
			continue
		}

		err := j.store.Save(ctx, storage.Cookie{
			Host:      host,
			Name:      c.Name,
			Value:     c.Value,
			Path:      path,
			Domain:    c.Domain,
			Secure:    c.Secure,
			HttpOnly:  c.HttpOnly,
			SameSite:  int(c.SameSite),
			ExpiresAt: expires,
		})
		if err != nil {
			j.logger.Error("Failed to store cookie", "name", c.Name, "error", err)
			continue
		}
		j.logger.Debug("Cookie stored", "host", host, "name", c.Name, "path", path)
	}
}

// Cookies returns the cookies to send in a request to u.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	stored, err := j.store.List(ctx, u.Hostname())
	if err != nil {
		j.logger.Error("Failed to load cookies", "host", u.Hostname(), "error", err)
		return nil
	}

	now := j.now()
	secure := u.Scheme == "https"
	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}

	var out []*http.Cookie
	for _, c := range stored {
		if c.Expired(now) || (c.Secure && !secure) || !pathMatch(reqPath, c.Path) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Clear forgets every cookie of u's host.
func (j *Jar) Clear(ctx context.Context, u *url.URL) error {
	return j.store.Clear(ctx, u.Hostname())
}

// Prune drops expired cookies from the store.
func (j *Jar) Prune(ctx context.Context) error {
	return j.store.Expire(ctx, j.now())
}

// defaultPath is the RFC 6265 default-path of a request path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}
