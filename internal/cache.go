package internal

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

type CacheEntry struct {
	Hash         string
	Report       *Report
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache keeps the last report of each program keyed by a hash of its
// content. Reports hold graph pointers, so entries live in memory only.
type Cache struct {
	entries map[string]CacheEntry
	mutex   sync.Mutex
	maxAge  time.Duration
}

// NewCache creates an empty cache. A zero maxAge keeps entries until their
// content changes.
func NewCache(maxAge time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		maxAge:  maxAge,
	}
}

func (c *Cache) Set(filename string, src []byte, report *Report) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Hash:         contentHash(src),
		Report:       report,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

func (c *Cache) Get(filename string, src []byte) (*Report, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(entry, src) {
		delete(c.entries, filename)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Report, true
}

func (c *Cache) isEntryInvalid(entry CacheEntry, src []byte) bool {
	// too old
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	return entry.Hash != contentHash(src)
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
}

func contentHash(src []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(src))
}
