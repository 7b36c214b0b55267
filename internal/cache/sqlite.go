package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteCache is a Cache backed by an embedded SQLite database. Expiry is
// stored as a unix-nano column (0 = never) and checked on read; Set also
// sweeps any already-expired rows so the file does not grow unbounded.
type sqliteCache struct {
	db *sql.DB
}

func newSQLiteCache(dbPath string) (Cache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS guidance_cache (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_guidance_cache_expiry ON guidance_cache(expires_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck // best-effort close on init failure
		return nil, fmt.Errorf("migrate sqlite cache: %w", err)
	}

	return &sqliteCache{db: db}, nil
}

func (c *sqliteCache) Get(key string) ([]byte, bool) {
	var value []byte
	var expiresAt int64
	err := c.db.QueryRow(
		`SELECT value, expires_at FROM guidance_cache WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		return nil, false
	}
	if expiresAt != 0 && time.Now().UnixNano() > expiresAt {
		c.Delete(key)
		return nil, false
	}
	return value, true
}

func (c *sqliteCache) Set(key string, value []byte, ttl time.Duration) bool {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	_, err := c.db.Exec(
		`INSERT INTO guidance_cache (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return false
	}
	// Opportunistic sweep of expired rows.
	_, _ = c.db.Exec(
		`DELETE FROM guidance_cache WHERE expires_at != 0 AND expires_at < ?`,
		time.Now().UnixNano(),
	)
	return true
}

func (c *sqliteCache) Delete(key string) bool {
	_, err := c.db.Exec(`DELETE FROM guidance_cache WHERE key = ?`, key)
	return err == nil
}

func (c *sqliteCache) Close() error {
	return c.db.Close()
}
