package pool

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"suiswap/internal/model"
	"suiswap/internal/sui"
)

const defaultCacheSize = 16

// StateCache holds pool snapshots under stable query keys.
type StateCache struct {
	entries *lru.Cache[string, model.PoolSnapshot]
}

func NewStateCache(size int) (*StateCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[string, model.PoolSnapshot](size)
	if err != nil {
		return nil, err
	}
	return &StateCache{entries: entries}, nil
}

// ObjectKey is the cache key for an object read.
func ObjectKey(id sui.Address) string {
	return "getObject:" + id.String()
}

func (c *StateCache) Get(key string) (model.PoolSnapshot, bool) {
	return c.entries.Get(key)
}

func (c *StateCache) Put(key string, snap model.PoolSnapshot) {
	c.entries.Add(key, snap)
}

// Invalidate drops key so the next read refetches.
func (c *StateCache) Invalidate(key string) {
	c.entries.Remove(key)
}
