package operator

import (
	"context"
	"sync"
	"sync/atomic"
)

// StaticCatalog is an in-memory Catalog filled by the host.
type StaticCatalog struct {
	mu      sync.RWMutex
	ids     map[Key]Identity
	lookups atomic.Int64
}

func NewStaticCatalog(entries map[Key]Identity) *StaticCatalog {
	ids := make(map[Key]Identity, len(entries))
	for k, id := range entries {
		ids[k] = id
	}
	return &StaticCatalog{ids: ids}
}

// NumberedCatalog registers keys with consecutive identities starting at first.
func NumberedCatalog(first Identity, keys []Key) *StaticCatalog {
	c := NewStaticCatalog(nil)
	for i, k := range keys {
		c.Register(k, first+Identity(i))
	}
	return c
}

func (c *StaticCatalog) Register(key Key, id Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[key] = id
}

func (c *StaticCatalog) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, key)
}

// Identity returns the identity registered for key.
func (c *StaticCatalog) Identity(key Key) (Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[key]
	return id, ok
}

// Lookups counts LookupOperators calls.
func (c *StaticCatalog) Lookups() int64 {
	return c.lookups.Load()
}

func (c *StaticCatalog) LookupOperators(ctx context.Context, keys []Key) (map[Key]Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.lookups.Add(1)

	c.mu.RLock()
	defer c.mu.RUnlock()
	found := make(map[Key]Identity, len(keys))
	for _, k := range keys {
		if id, ok := c.ids[k]; ok {
			found[k] = id
		}
	}
	return found, nil
}
