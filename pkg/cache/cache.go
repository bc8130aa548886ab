// Package cache provides a bounded, expiring in-memory cache.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is the subset of cache behaviour callers depend on.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
	Remove(key K)
	Len() int
}

// LRU evicts the least recently used entry once full and drops entries
// older than the TTL.
type LRU[K comparable, V any] struct {
	inner *expirable.LRU[K, V]
}

// New creates an LRU holding at most capacity entries for ttl each. A zero
// ttl keeps entries until they are evicted.
func New[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[K, V]{inner: expirable.NewLRU[K, V](capacity, nil, ttl)}
}

func (c *LRU[K, V]) Get(key K) (V, bool) { return c.inner.Get(key) }

func (c *LRU[K, V]) Add(key K, value V) { c.inner.Add(key, value) }

func (c *LRU[K, V]) Remove(key K) { c.inner.Remove(key) }

func (c *LRU[K, V]) Len() int { return c.inner.Len() }

// Fingerprint derives a stable cache key from request parts.
func Fingerprint(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	sum := sha256.Sum256([]byte(strings.Join(s, "\x1f")))
	return hex.EncodeToString(sum[:])
}

var _ Cache[string, int] = (*LRU[string, int])(nil)
