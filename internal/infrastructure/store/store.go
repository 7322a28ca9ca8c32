package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
)

// ListCacheStore caches list responses of the mock backend in Redis.
type ListCacheStore struct {
	rdb     *redis.Client
	listTTL time.Duration
}

var _ contract.IListCache = (*ListCacheStore)(nil)

func NewListCacheStore(rdb *redis.Client, ttl time.Duration) *ListCacheStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ListCacheStore{rdb: rdb, listTTL: ttl}
}

// GetList decodes the cached value at key into dest. A miss or an undecodable entry reports false.
func (c *ListCacheStore) GetList(ctx context.Context, key string, dest interface{}) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *ListCacheStore) SetList(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.listTTL).Err()
}

// InvalidatePrefix drops every key starting with prefix.
func (c *ListCacheStore) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 1000).Iterator()
	pipe := c.rdb.Pipeline()
	n := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		n++
		if n%200 == 0 {
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if n%200 != 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// NopListCache is used when no Redis is configured. Every lookup misses.
type NopListCache struct{}

var _ contract.IListCache = NopListCache{}

func (NopListCache) GetList(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopListCache) SetList(context.Context, string, interface{}) error         { return nil }
func (NopListCache) InvalidatePrefix(context.Context, string) error             { return nil }
