package ports

import (
	"context"
	"time"
)

// ChallengeStore records redeemed challenge IDs so a challenge token can be used only once
type ChallengeStore interface {
	// Consume marks the challenge as used for ttl. It reports false if it was already used.
	Consume(ctx context.Context, challengeID string, ttl time.Duration) (bool, error)
}
