package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	Client *redis.Client

	// KeyPrefix namespaces the slot key. Default: "delicom:credstore:"
	KeyPrefix string

	// TTL expires the slot server-side. Zero keeps it until overwritten.
	TTL time.Duration
}

// Redis keeps the session in Redis so that several processes sharing the
// same carrier account reuse one login.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, errors.New("credstore: redis client is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "delicom:credstore:"
	}
	return &Redis{
		client: cfg.Client,
		key:    prefix + "session",
		ttl:    cfg.TTL,
	}, nil
}

// Get loads the cached session.
func (r *Redis) Get(ctx context.Context) (*Session, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: get %s: %w", r.key, err)
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("credstore: failed to unmarshal: %w", err)
	}
	return &s, nil
}

// Put overwrites the cached session.
func (r *Redis) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("credstore: failed to marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("credstore: set %s: %w", r.key, err)
	}
	return nil
}

// Clear deletes the cached session.
func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

var _ Store = (*Redis)(nil)
