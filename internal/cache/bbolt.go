package cache

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bboltBucket = "guidance_cache"

// bboltCache is a Cache backed by an embedded bbolt database. Each value is
// stored with an 8-byte big-endian unix-nano expiry header (zero = never).
type bboltCache struct {
	db *bolt.DB
}

// newBboltCache opens (or creates) the bbolt database at path and ensures
// the bucket exists.
func newBboltCache(path string) (Cache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt cache %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bboltBucket))
		return err
	}); err != nil {
		db.Close() //nolint:errcheck // best-effort close on init failure
		return nil, fmt.Errorf("create bbolt bucket: %w", err)
	}
	return &bboltCache{db: db}, nil
}

func encodeEntry(value []byte, ttl time.Duration) []byte {
	buf := make([]byte, 8+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf, uint64(time.Now().Add(ttl).UnixNano()))
	}
	copy(buf[8:], value)
	return buf
}

func decodeEntry(raw []byte) (value []byte, expired bool) {
	if len(raw) < 8 {
		return nil, true
	}
	exp := binary.BigEndian.Uint64(raw)
	if exp != 0 && time.Now().UnixNano() > int64(exp) {
		return nil, true
	}
	return append([]byte(nil), raw[8:]...), false
}

func (c *bboltCache) Get(key string) ([]byte, bool) {
	var value []byte
	var found, expired bool
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bboltBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		value, expired = decodeEntry(raw)
		return nil
	})
	if err != nil || !found {
		return nil, false
	}
	if expired {
		c.Delete(key)
		return nil, false
	}
	return value, true
}

func (c *bboltCache) Set(key string, value []byte, ttl time.Duration) bool {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bboltBucket)).Put([]byte(key), encodeEntry(value, ttl))
	})
	return err == nil
}

func (c *bboltCache) Delete(key string) bool {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bboltBucket)).Delete([]byte(key))
	})
	return err == nil
}

func (c *bboltCache) Close() error {
	return c.db.Close()
}
