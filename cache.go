package sqldatabase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the interface for caching SELECT results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory). Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies one SELECT result. Keys start with the queried table's
// fully qualified name so a write to the table can invalidate every cached
// result of that table with one DeletePrefix call.
type CacheKey struct {
	Table string // fully qualified table name
	SQL   string // statement text in the target dialect
	Args  string // rendered parameter values
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Table + ":" + k.SQL + ":" + k.Args
}

// TableCachePrefix returns the key prefix shared by all cached results of
// the table with the given fully qualified name.
func TableCachePrefix(fqn string) string {
	return fqn + ":"
}

// rowsPayload is the cached image of a result set: the alias header and the
// raw rows exactly as scanned from the driver.
type rowsPayload struct {
	Aliases []string `msgpack:"aliases"`
	Rows    [][]any  `msgpack:"rows"`
}

func encodeRows(aliases []string, rows [][]any) ([]byte, error) {
	return msgpack.Marshal(&rowsPayload{Aliases: aliases, Rows: rows})
}

func decodeRows(data []byte) (*rowsPayload, error) {
	var payload rowsPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process Cache backed by a map. It suits tests and
// single-process deployments; shared deployments want an external store
// behind the same interface.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// DeletePrefix implements Cache.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
