package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis stores values under "storefront:<key>". A zero ttl keeps keys for a day.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{
		client: client,
		prefix: "storefront:",
		ttl:    ttl,
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", port.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get[%s]: %w", key, err)
	}

	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set[%s]: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, r.prefix+key)
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
