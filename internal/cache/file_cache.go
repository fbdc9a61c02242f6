// Package cache keeps station metadata on disk between runs, so a restart
// of the board does not repeat the stop point lookups.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const appDir = "tubeboard"

// FileCache is a TTL cache storing one JSON file per key
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type entry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewFileCache creates the cache directory and returns the cache
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/tubeboard or ~/.cache/tubeboard
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDir+"-cache")
	}
	return filepath.Join(home, ".cache", appDir)
}

// Dir returns the cache directory
func (c *FileCache) Dir() string {
	return c.dir
}

func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// load reads an entry and removes it when unreadable or expired
func (c *FileCache) load(filename string) (entry, bool) {
	// #nosec G304 -- filename is a hash inside the cache directory
	raw, err := os.ReadFile(filename)
	if err != nil {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || c.now().After(e.ExpiresAt) {
		_ = os.Remove(filename)
		return entry{}, false
	}
	return e, true
}

// Get returns the cached bytes for key if present and fresh
func (c *FileCache) Get(key string) ([]byte, bool) {
	e, ok := c.load(c.path(key))
	if !ok || e.Key != key {
		return nil, false
	}
	return e.Data, true
}

// Set stores value under key for the cache TTL
func (c *FileCache) Set(key string, value []byte) error {
	raw, err := json.Marshal(entry{
		Key:       key,
		Data:      value,
		ExpiresAt: c.now().Add(c.ttl),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), raw, 0600)
}

// Clear removes every entry and returns how many were removed
func (c *FileCache) Clear() (int, error) {
	return c.sweep(func(string) bool { return true })
}

// Cleanup removes expired or corrupt entries and returns how many were removed
func (c *FileCache) Cleanup() (int, error) {
	return c.sweep(func(filename string) bool {
		_, ok := c.load(filename)
		return !ok
	})
}

func (c *FileCache) sweep(remove func(filename string) bool) (int, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		filename := filepath.Join(c.dir, f.Name())
		if !remove(filename) {
			continue
		}
		// load already deletes stale files
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
			continue
		}
		removed++
	}
	return removed, nil
}
