package assoc

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/assoc/dialect"
)

// Cache is the interface for caching row reads.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory).
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

// CacheKey generates a cache key for a read.
type CacheKey struct {
	Table      string
	Operation  string
	Predicates string
}

// String returns the string representation of the cache key. Keys of a
// table share the "<table>:" prefix.
func (k CacheKey) String() string {
	return k.Table + ":" + k.Operation + ":" + k.Predicates
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), now: time.Now}
}

var _ Cache = (*MemoryCache)(nil)

// Get implements the Cache interface.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.value, nil
}

// Set implements the Cache interface.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// Delete implements the Cache interface.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// DeletePrefix implements the Cache interface.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Clear implements the Cache interface.
func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// generation orders cache fills against invalidations. A read stores its
// rows only if no invalidation ran since it reached the storage.
type generation struct {
	mu sync.Mutex
	n  uint64
}

func (g *generation) load() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// fill runs set if the generation is still n.
func (g *generation) fill(n uint64, set func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n == n {
		set()
	}
}

// bump starts a new generation and runs drop under the same lock.
func (g *generation) bump(drop func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	drop()
}

func encodeRows(rows []dialect.Row) ([]byte, error) {
	return msgpack.Marshal(rows)
}

func decodeRows(b []byte) ([]dialect.Row, error) {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	var rows []dialect.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// selectRows reads rows through the cache when one is configured and the
// client is not bound to a transaction.
func (c *Client) selectRows(ctx context.Context, table string, p *dialect.Predicate) ([]dialect.Row, error) {
	if c.cache == nil || c.tx != nil {
		return c.drv.SelectRows(ctx, table, p)
	}
	key := CacheKey{Table: table, Operation: "select", Predicates: p.String()}.String()
	if b, err := c.cache.Get(ctx, key); err != nil {
		c.log.WarnContext(ctx, "assoc: cache get", "key", key, "error", err)
	} else if b != nil {
		rows, err := decodeRows(b)
		if err == nil {
			return rows, nil
		}
		c.log.WarnContext(ctx, "assoc: cache decode", "key", key, "error", err)
	}
	gen := c.gen.load()
	rows, err := c.drv.SelectRows(ctx, table, p)
	if err != nil {
		return nil, err
	}
	b, err := encodeRows(rows)
	if err == nil {
		c.gen.fill(gen, func() { err = c.cache.Set(ctx, key, b, c.cacheTTL) })
	}
	if err != nil {
		c.log.WarnContext(ctx, "assoc: cache set", "key", key, "error", err)
	}
	return rows, nil
}

// invalidate drops the cached reads of the given tables. Inside a
// transaction the whole cache is cleared on commit instead.
func (c *Client) invalidate(ctx context.Context, tables ...string) {
	if c.cache == nil || c.tx != nil {
		return
	}
	c.gen.bump(func() {
		for _, t := range tables {
			if err := c.cache.DeletePrefix(ctx, t+":"); err != nil {
				c.log.WarnContext(ctx, "assoc: cache invalidate", "table", t, "error", err)
			}
		}
	})
}
