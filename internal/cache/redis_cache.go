package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "sucursalpos:revoked:"

type RedisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(addr string, password string, db int) *RedisRevocations {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisRevocations{client: client}
}

func (c *RedisRevocations) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisRevocations) Close() error {
	return c.client.Close()
}

// Revoke stores the token id until the token would have expired anyway.
func (c *RedisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (c *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := c.client.Get(ctx, revokedKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
