package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is an in-process analysis cache bounded by entry count.
type LRU struct {
	entries *lru.Cache[string, []byte]
}

func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRU{entries: c}, nil
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	return c.entries.Get(key)
}

func (c *LRU) Set(_ context.Context, key string, value []byte) {
	c.entries.Add(key, value)
}

func (c *LRU) Len() int {
	return c.entries.Len()
}

// Store is the Get/Set pair both cache tiers implement.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Tiered reads the local tier first and fills it from the shared tier.
// Writes go to both.
type Tiered struct {
	local  Store
	shared Store
}

func NewTiered(local, shared Store) *Tiered {
	return &Tiered{local: local, shared: shared}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.local.Get(ctx, key); ok {
		return v, true
	}
	v, ok := t.shared.Get(ctx, key)
	if ok {
		t.local.Set(ctx, key, v)
	}
	return v, ok
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte) {
	t.local.Set(ctx, key, value)
	t.shared.Set(ctx, key, value)
}
