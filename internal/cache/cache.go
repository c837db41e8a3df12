// Package cache layers a small in-memory tier over the contentCache
// store and provides the durable and session key-value helpers.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/abhisek/growth90/internal/store"
)

// DefaultTTL is applied when Set is called with a zero TTL.
const DefaultTTL = time.Hour

// MaxMemoryEntries caps the in-memory tier. Eviction is oldest-first.
const MaxMemoryEntries = 100

type memEntry struct {
	value     any
	expiresAt time.Time
}

// ContentCache is the tiered content cache: an in-memory mirror over the
// contentCache object store. Reads prefer memory, fall back to the
// store, and rehydrate memory on a store hit. Expired entries are
// deleted on read.
type ContentCache struct {
	store *store.Store
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]memEntry
	order   []string // insertion order, for eviction
}

// NewContentCache creates a cache over the given store.
func NewContentCache(st *store.Store) *ContentCache {
	return &ContentCache{
		store:   st,
		now:     time.Now,
		entries: make(map[string]memEntry),
	}
}

// WithClock overrides the cache clock. Used in tests.
func (c *ContentCache) WithClock(now func() time.Time) *ContentCache {
	c.now = now
	return c
}

// Set writes value under key to both tiers with the given TTL
// (DefaultTTL when zero). Empty values are not cached.
func (c *ContentCache) Set(ctx context.Context, key, contentType string, value any, ttl time.Duration) error {
	if IsEmptyValue(value) {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expires := c.now().Add(ttl)

	rec := store.Record{
		"id":        key,
		"type":      contentType,
		"value":     value,
		"expiresAt": float64(expires.UnixMilli()),
	}
	if _, err := c.store.Put(ctx, store.ContentCache, rec); err != nil {
		return err
	}

	c.mu.Lock()
	c.insert(key, memEntry{value: value, expiresAt: expires})
	c.mu.Unlock()
	return nil
}

// Get returns the cached value for key, or (nil, false) on a miss.
// A miss is normal control flow, not an error.
func (c *ContentCache) Get(ctx context.Context, key string) (any, bool, error) {
	now := c.now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.value, true, nil
	}
	if ok {
		c.remove(key)
	}
	c.mu.Unlock()

	rec, err := c.store.Get(ctx, store.ContentCache, key)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}

	millis, _ := rec["expiresAt"].(float64)
	expires := time.UnixMilli(int64(millis))
	if !now.Before(expires) {
		if err := c.store.Delete(ctx, store.ContentCache, key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	value := rec["value"]
	c.mu.Lock()
	c.insert(key, memEntry{value: value, expiresAt: expires})
	c.mu.Unlock()
	return value, true, nil
}

// Invalidate drops key from both tiers.
func (c *ContentCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	c.remove(key)
	c.mu.Unlock()
	return c.store.Delete(ctx, store.ContentCache, key)
}

// MemoryLen returns the number of entries in the memory tier.
func (c *ContentCache) MemoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// insert adds or updates an entry, evicting oldest-first at capacity.
// Updating an existing key keeps its insertion position. Caller holds mu.
func (c *ContentCache) insert(key string, entry memEntry) {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		return
	}
	for len(c.entries) >= MaxMemoryEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = entry
	c.order = append(c.order, key)
}

// remove drops an entry. Caller holds mu.
func (c *ContentCache) remove(key string) {
	if _, exists := c.entries[key]; !exists {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// IsEmptyValue reports whether a value carries no cacheable content:
// nil, an empty string, an empty collection, or an object whose every
// field is itself empty.
func IsEmptyValue(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return true
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return true
	}
	return isEmptyJSON(decoded)
}

func isEmptyJSON(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		for _, field := range x {
			if !isEmptyJSON(field) {
				return false
			}
		}
		return true
	default:
		// Numbers and booleans always carry content.
		return false
	}
}
