package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDurable is a Redis-backed DurableStore. Recommended when the session
// must survive process restarts or be visible to more than one instance.
// Writers are not coordinated; last write wins.
type RedisDurable struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a RedisDurable instance.
type RedisOption func(*RedisDurable)

// WithTTL bounds how long durable values live without an overwrite. Zero
// (the default) means no expiry; logout is the only cleanup.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisDurable) { s.ttl = ttl }
}

// NewRedisDurable constructs a Redis-backed durable store. The client
// lifecycle is managed by the caller.
func NewRedisDurable(client *redis.Client, opts ...RedisOption) *RedisDurable {
	s := &RedisDurable{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisDurable) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *RedisDurable) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *RedisDurable) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
