// Package cache provides a small TTL'd JSON file cache, used for provider
// model listings.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"

	"github.com/danielhostetler/baishify/internal/domain"
)

// envelope wraps a payload with its write time so expiry needs no separate
// index.
type envelope struct {
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// FileCache stores JSON blobs addressed by key under the XDG cache directory.
type FileCache struct {
	dir string
	mu  sync.Mutex
	ttl time.Duration
}

// NewFileCache returns a cache rooted under the user cache directory.
func NewFileCache() *FileCache {
	return &FileCache{
		dir: filepath.Join(xdg.CacheHome, "baishify"),
		ttl: domain.ModelCacheTTL,
	}
}

// Get unmarshals the entry for key into v and reports whether a fresh entry
// was found. Expired entries are removed on read.
func (c *FileCache) Get(key string, v interface{}) bool {
	if key == "" {
		return false
	}
	path := c.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		_ = os.Remove(path)
		return false
	}
	if c.ttl > 0 && time.Since(env.CreatedAt) > c.ttl {
		_ = os.Remove(path)
		return false
	}
	return json.Unmarshal(env.Payload, v) == nil
}

// Put stores v under key.
func (c *FileCache) Put(key string, v interface{}) error {
	if key == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, domain.DirectoryPermissions); err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{CreatedAt: time.Now(), Payload: payload})
	if err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, 0o644)
}

// Dir exposes the cache directory path.
func (c *FileCache) Dir() string {
	return c.dir
}

// Clear removes all cached entries.
func (c *FileCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *FileCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}
