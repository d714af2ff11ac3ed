package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/addrauth/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the ChallengeStore interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.ChallengeStore {
	return &RedisStore{
		client: client,
		prefix: "addrauth:consumed:",
	}
}

// Consume marks a challenge as used in Redis. SETNX makes concurrent redemptions
// of the same challenge race-free across instances.
func (s *RedisStore) Consume(ctx context.Context, challengeID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// Redis treats a zero expiration as "keep forever"; the token is expired anyway.
		ttl = time.Second
	}

	key := s.prefix + challengeID

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", err)
	}

	return ok, nil
}
