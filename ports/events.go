package ports

import "context"

// EventPublisher publishes events to notify other services
type EventPublisher interface {
	PublishSessionIssued(ctx context.Context, address string, challengeID string) error
}
