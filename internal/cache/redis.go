package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

const redisOpTimeout = 2 * time.Second

var errRedisMiss = errors.New("redis: key not found")

// kv is the subset of Redis used by RedisCache
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// RedisCache is a shared cache tier backed by Redis
type RedisCache struct {
	store kv
	ttl   time.Duration
	close func()
}

// NewRedisCache connects to Redis and returns a cache tier
func NewRedisCache(addrs []string, password string, ttl time.Duration) (*RedisCache, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  addrs,
		Password:     password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}

	return &RedisCache{
		store: &rueidisKV{client: client},
		ttl:   ttl,
		close: client.Close,
	}, nil
}

// Get retrieves a value; Redis errors count as misses
func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value with a TTL; a zero TTL uses the default
func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.store.SetEx(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a value
func (c *RedisCache) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.store.Del(ctx, key); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every claimcheck key
func (c *RedisCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*redisOpTimeout)
	defer cancel()

	keys, err := c.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close shuts down the client
func (c *RedisCache) Close() {
	if c.close != nil {
		c.close()
	}
}

// rueidisKV adapts a rueidis client to kv
type rueidisKV struct {
	client rueidis.Client
}

func (r *rueidisKV) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := r.client.B().Get().Key(key).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, errRedisMiss
		}
		return nil, err
	}
	return data, nil
}

func (r *rueidisKV) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := r.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *rueidisKV) Del(ctx context.Context, keys ...string) error {
	cmd := r.client.B().Del().Key(keys...).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *rueidisKV) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := r.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := r.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, err
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
