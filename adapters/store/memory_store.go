package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/addrauth/ports"
)

// MemoryStore is an in-memory implementation of the ChallengeStore interface.
// It only protects a single process; use RedisStore when running several instances.
type MemoryStore struct {
	consumed map[string]time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.ChallengeStore {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		consumed: make(map[string]time.Time),
		now:      now,
	}
}

// Consume marks a challenge as used until ttl elapses
func (s *MemoryStore) Consume(ctx context.Context, challengeID string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	if expiry, exists := s.consumed[challengeID]; exists && now.Before(expiry) {
		return false, nil
	}

	s.consumed[challengeID] = now.Add(ttl)
	return true, nil
}

// sweep drops records whose challenge token can no longer be presented. Caller holds mu.
func (s *MemoryStore) sweep(now time.Time) {
	for id, expiry := range s.consumed {
		if !now.Before(expiry) {
			delete(s.consumed, id)
		}
	}
}
