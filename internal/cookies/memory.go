package cookies

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"roombook/internal/storage"
)

type memoryKey struct {
	host, name, path string
}

// MemoryStore holds cookies in a map protected by a RWMutex. Nothing
// survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[memoryKey]storage.Cookie
	seq     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[memoryKey]storage.Cookie)}
}

func (m *MemoryStore) List(ctx context.Context, host string) ([]storage.Cookie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []storage.Cookie
	for k, c := range m.entries {
		if k.host == host {
			out = append(out, c)
		}
	}
	// Insertion order, like the SQL store
	slices.SortFunc(out, func(a, b storage.Cookie) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, c storage.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey{c.Host, c.Name, c.Path}
	if old, ok := m.entries[key]; ok {
		c.ID = old.ID
		c.CreatedAt = old.CreatedAt
	} else {
		m.seq++
		c.ID = m.seq
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
	}
	m.entries[key] = c
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, host, name, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, memoryKey{host, name, path})
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, host string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if k.host == host {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *MemoryStore) Expire(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, c := range m.entries {
		if c.Expired(now) {
			delete(m.entries, k)
		}
	}
	return nil
}
