package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// expirationGrace keeps a key alive a little past the cart window so the
// adapter, not Redis, decides when a cart has expired.
const expirationGrace = 5 * time.Minute

func NewRedisKV(client *redis.Client, window time.Duration) *RedisKV {
	return &RedisKV{
		client: client,
		ttl:    window + expirationGrace,
	}
}

type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisKV) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisKV) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
