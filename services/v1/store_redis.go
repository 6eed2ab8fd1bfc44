package v1

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps the configuration blob under a single redis key with no expiry.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Get(ctx context.Context) ([]byte, error) {
	blob, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, storeUnavailable("redis get", err)
	}
	return blob, nil
}

func (s *RedisStore) Put(ctx context.Context, blob []byte) error {
	if err := s.rdb.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return storeUnavailable("redis set", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return storeUnavailable("redis ping", err)
	}
	return nil
}
