package cache

import (
	"context"
	"errors"
	"time"

	"flight_board/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// RedisCache is the Cache behind REDIS_ADDR. Every request is recorded
// under the kind of board its key belongs to.
type RedisCache struct {
	c *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{c: rdb}
}

func (r *RedisCache) Close() error { return r.c.Close() }

func (r *RedisCache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

const (
	opGet    = "get"
	opSet    = "set"
	opDelete = "delete"
	opInfo   = "info"
)

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	b, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCacheRequest(opGet, KeyKind(key), time.Since(start), nil)
		return nil, false, nil
	}
	metrics.ObserveCacheRequest(opGet, KeyKind(key), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := r.c.Set(ctx, key, value, ttl).Err()
	metrics.ObserveCacheRequest(opSet, KeyKind(key), time.Since(start), err)
	return err
}

// Del removes keys in one round trip. The request is labelled with the kind
// of the first key; callers delete one kind at a time.
func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	start := time.Now()
	err := r.c.Del(ctx, keys...).Err()
	metrics.ObserveCacheRequest(opDelete, KeyKind(keys[0]), time.Since(start), err)
	return err
}

func (r *RedisCache) RawClient() *redis.Client { return r.c }
