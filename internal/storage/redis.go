package storage

import (
	"context"
	"fmt"

	fiberredis "github.com/gofiber/storage/redis/v3"
)

const redisPrefix = "engagehub:"

// Redis stores values in Redis through the fiber storage driver.
type Redis struct {
	store  *fiberredis.Storage
	prefix string
}

// NewRedis connects to the Redis server at redisURL. The driver panics when
// the initial ping fails; that is reported as an error instead.
func NewRedis(redisURL string) (r *Redis, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("connect to redis: %v", p)
		}
	}()

	store := fiberredis.New(fiberredis.Config{
		URL: redisURL,
	})
	return &Redis{store: store, prefix: redisPrefix}, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.store.GetWithContext(ctx, r.key(key))
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	if val == nil {
		return nil, ErrNotFound
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.store.SetWithContext(ctx, r.key(key), value, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.store.DeleteWithContext(ctx, r.key(key)); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.store.Conn().Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.store.Close()
}
