package upstream

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	domainRepo "github.com/sangkips/materials-console/internal/domain/repository"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

// scopeSeparator divides the session scope from the query identity in a key
const scopeSeparator = "|"

// Cache holds reference responses keyed by query identity: the request
// path plus its canonical query string. Entries expire after the TTL or
// when a mutation marks them stale.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
}

type cacheEntry struct {
	body     json.RawMessage
	storedAt time.Time
	stale    bool
}

var _ domainRepo.CacheInvalidator = (*Cache)(nil)

// NewCache creates a reference cache. A zero TTL keeps entries until they
// are invalidated.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key builds the identity of a query. url.Values.Encode sorts by key, so
// equal filters yield equal keys regardless of insertion order.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// ScopedKey prefixes key with a digest of the session credentials carried
// by ctx. The business API answers per session, so one caller's response
// must never be served to another.
func ScopedKey(ctx context.Context, key string) string {
	creds, ok := CredentialsFrom(ctx)
	if !ok {
		return key
	}
	sum := blake2b.Sum256([]byte(creds.Cookie + "\x00" + creds.Authorization))
	return hex.EncodeToString(sum[:12]) + scopeSeparator + key
}

// Get returns the fresh entry for key or loads it. Concurrent loads of the
// same key share a single upstream call. The shared load does not inherit
// the cancellation of whichever caller started it; each caller stops
// waiting when its own ctx is done.
func (c *Cache) Get(ctx context.Context, key string, load func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if body, ok := c.lookup(key); ok {
		return body, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if body, ok := c.lookup(key); ok {
			return body, nil
		}
		body, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, body)
		return body, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) lookup(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.stale {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.body, true
}

func (c *Cache) store(key string, body json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{body: body, storedAt: c.now()}
}

// Invalidate marks stale every entry whose path mentions one of the
// resources, e.g. "products" matches /api/products?page=1 and
// /api/account-payables/7/products.
func (c *Cache) Invalidate(resources ...string) {
	if len(resources) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if matchesAny(key, resources) {
			entry.stale = true
		}
	}
}

// InvalidateAll marks every entry stale
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries {
		entry.stale = true
	}
}

// Len returns the number of entries, stale ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func matchesAny(key string, resources []string) bool {
	path := key
	if i := strings.Index(path, scopeSeparator); i >= 0 {
		path = path[i+len(scopeSeparator):]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, segment := range strings.Split(path, "/") {
		for _, r := range resources {
			if segment == r {
				return true
			}
		}
	}
	return false
}
