package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheCodePrefix = "catalog:code:"
	cacheNamePrefix = "catalog:name:"
)

// CachedRepository is a read-through Redis cache in front of a catalog
// repository. Cache failures degrade to direct lookups; only the
// underlying repository's errors are reported to callers.
type CachedRepository struct {
	inner  RepositoryPort
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCachedRepository wraps inner with Redis based caching. A nil client
// yields a pass-through repository.
func NewCachedRepository(inner RepositoryPort, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{inner: inner, client: client, ttl: ttl}
}

// GetByCode fetches one catalog item by its exact code, consulting the
// cache first.
func (c *CachedRepository) GetByCode(ctx context.Context, code string) (Item, error) {
	key := cacheCodePrefix + code
	var item Item
	if c.lookup(ctx, key, &item) {
		return item, nil
	}
	// Concurrent misses for the same code collapse into one lookup.
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		item, err := c.inner.GetByCode(ctx, code)
		if err != nil {
			return Item{}, err
		}
		c.store(ctx, key, item)
		return item, nil
	})
	if err != nil {
		return Item{}, err
	}
	return v.(Item), nil
}

// ListByName returns catalog items matching a normalized name, consulting
// the cache first.
func (c *CachedRepository) ListByName(ctx context.Context, normalizedName string) ([]Item, error) {
	key := cacheNamePrefix + normalizedName
	var items []Item
	if c.lookup(ctx, key, &items) {
		return items, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		items, err := c.inner.ListByName(ctx, normalizedName)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}

// Invalidate drops cached entries for an item's code and normalized name.
// Callers invoke it after catalog writes so stale resolutions expire
// immediately instead of waiting out the TTL.
func (c *CachedRepository) Invalidate(ctx context.Context, item Item) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheCodePrefix+item.Code, cacheNamePrefix+Normalize(item.Name)).Err()
}

func (c *CachedRepository) lookup(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

func (c *CachedRepository) store(ctx context.Context, key string, value interface{}) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

var _ RepositoryPort = (*CachedRepository)(nil)
