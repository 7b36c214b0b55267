package cache

import (
	"fmt"
	"sync"
	"time"
)

// Cache is the structured-result store interface. All implementations must
// be safe for concurrent use. Set and Delete report success rather than
// returning an error: a failed cache write is never fatal to a request,
// the pipeline just recomputes next time.
type Cache interface {
	// Get returns the cached value for key, if present and not expired.
	Get(key string) ([]byte, bool)

	// Set stores value under key with the given TTL. A non-positive TTL
	// means the entry never expires.
	Set(key string, value []byte, ttl time.Duration) bool

	// Delete removes key. Deleting an absent key is a success.
	Delete(key string) bool

	// Close releases any resources held by the backend (file handles,
	// database connections).
	Close() error
}

// Open constructs the backend named by the config. Unknown backend names
// are an error rather than a silent fallback so a typo in config does not
// quietly disable persistence.
func Open(backend, path string) (Cache, error) {
	switch backend {
	case "", "memory":
		return NewMemory(), nil
	case "bbolt":
		return newBboltCache(path)
	case "sqlite":
		return newSQLiteCache(path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// --- memory backend ------------------------------------------------------

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

type memoryCache struct {
	mu    sync.RWMutex
	store map[string]memoryEntry
}

// NewMemory returns an in-process Cache. Exported (unlike the file-backed
// constructors) because tests build pipelines around it directly.
func NewMemory() Cache {
	return &memoryCache{store: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.Delete(key)
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) Set(key string, value []byte, ttl time.Duration) bool {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.store[key] = e
	c.mu.Unlock()
	return true
}

func (c *memoryCache) Delete(key string) bool {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
	return true
}

func (c *memoryCache) Close() error { return nil }
