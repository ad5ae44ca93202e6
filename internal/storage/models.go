package storage

import "time"

// Cookie is one persisted HTTP cookie, keyed by (host, name, path).
type Cookie struct {
	ID        int64      `db:"id"`
	Host      string     `db:"host"`
	Name      string     `db:"name"`
	Value     string     `db:"value"`
	Path      string     `db:"path"`
	Domain    string     `db:"domain"`
	Secure    bool       `db:"secure"`
	HttpOnly  bool       `db:"http_only"`
	SameSite  int        `db:"same_site"`
	ExpiresAt *time.Time `db:"expires_at,omitempty"` // nil for session cookies
	CreatedAt time.Time  `db:"created_at"`
}

// Expired reports whether the cookie has an expiry at or before now.
func (c Cookie) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}
