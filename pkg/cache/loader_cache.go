// Package cache memoizes keyed loads behind an LRU. Concurrent misses for the same key share a
// single load.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Loader produces the value for key on a cache miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// LoaderCache is an LRU of loaded values. keyOf maps a key to the string used for both the LRU
// and the singleflight group, so two keys with the same string share an entry.
type LoaderCache[K comparable, V any] struct {
	entries  *lru.Cache[string, V]
	inflight singleflight.Group
	keyOf    func(K) string
}

// New creates a cache holding at most size entries.
func New[K comparable, V any](size int, keyOf func(K) string) (*LoaderCache[K, V], error) {
	entries, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	return &LoaderCache[K, V]{entries: entries, keyOf: keyOf}, nil
}

// Get returns the value for key, calling load on a miss. hit is true only when the value was
// already cached; callers that waited on another caller's load see a miss. Failed loads are not
// cached and every waiter receives the error.
func (c *LoaderCache[K, V]) Get(ctx context.Context, key K, load Loader[K, V]) (value V, hit bool, err error) {
	k := c.keyOf(key)
	if v, ok := c.entries.Get(k); ok {
		return v, true, nil
	}

	res, err, _ := c.inflight.Do(k, func() (any, error) {
		loaded, loadErr := load(ctx, key)
		if loadErr != nil {
			return nil, loadErr
		}

		c.entries.Add(k, loaded)

		return loaded, nil
	})
	if err != nil {
		var zero V

		return zero, false, err
	}

	return res.(V), false, nil
}

// Len returns the number of cached entries.
func (c *LoaderCache[K, V]) Len() int { return c.entries.Len() }
