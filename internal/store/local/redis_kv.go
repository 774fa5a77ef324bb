package local

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

var _ KV = (*RedisKV)(nil)

// RedisKV stores the local records in redis, for devices (or deployments)
// which already run one next to the service.
type RedisKV struct {
	redisClient *redis.Client
}

func NewRedisKV(redisClient *redis.Client) *RedisKV {
	return &RedisKV{
		redisClient: redisClient,
	}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := r.redisClient.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return cmd.Bytes()
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.redisClient.Set(ctx, key, value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.redisClient.Del(ctx, key).Err()
}
