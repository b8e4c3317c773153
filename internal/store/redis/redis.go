// Package redis provides the durable key-value capabilities the engine
// injects: the disclosure flag store and the idempotency response cache.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casaguide/concierge/pkg/config"
)

type Client struct {
	rdb *redis.Client
}

func Connect(cfg config.RedisConfig) (*Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	opt.DB = cfg.DB

	return &Client{rdb: redis.NewClient(opt)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// FlagStore implements disclosure.Store on redis. Flags have no TTL:
// disclosure is a one-way latch for the lifetime of a code value.
type FlagStore struct {
	rdb *redis.Client
}

func (c *Client) FlagStore() *FlagStore {
	return &FlagStore{rdb: c.rdb}
}

func (s *FlagStore) Get(ctx context.Context, key string) (bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (s *FlagStore) Set(ctx context.Context, key string, value bool) error {
	v := "0"
	if value {
		v = "1"
	}
	return s.rdb.Set(ctx, key, v, 0).Err()
}

// KVStore implements the idempotency middleware's string store.
type KVStore struct {
	rdb *redis.Client
}

func (c *Client) KVStore() *KVStore {
	return &KVStore{rdb: c.rdb}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}
