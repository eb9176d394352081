package idgen

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSequence keeps one INCR counter per sequence name.
type RedisSequence struct {
	redis  *redis.Client
	prefix string
}

func NewRedisSequence(redisClient *redis.Client, prefix string) *RedisSequence {
	if prefix == "" {
		prefix = "flowcode:seq"
	}
	return &RedisSequence{redis: redisClient, prefix: prefix}
}

func (s *RedisSequence) key(name string) string {
	return s.prefix + ":" + name
}

// Next uses Redis INCR to atomically get the next value.
func (s *RedisSequence) Next(ctx context.Context, name string) (uint64, error) {
	val, err := s.redis.Incr(ctx, s.key(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return uint64(val), nil
}

// Current returns the last issued value, or 0 if the counter was never used.
func (s *RedisSequence) Current(ctx context.Context, name string) (uint64, error) {
	val, err := s.redis.Get(ctx, s.key(name)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return val, nil
}
