package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var errRedisUnavailable = errors.New("redis storage unavailable")

// RedisStorage keeps items as plain redis strings under an optional prefix
type RedisStorage struct {
	redis  *redis.Client
	prefix string
}

// NewRedisStorage wraps an existing client
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStorage) key(k string) string {
	return s.prefix + k
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return v, true, nil
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

// Close releases the underlying client
func (s *RedisStorage) Close() error {
	return s.redis.Close()
}
