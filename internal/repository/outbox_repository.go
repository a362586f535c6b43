package repository

import (
	"context"
	"time"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

// PublishFunc publishes one outbox message
type PublishFunc func(ctx context.Context, msg *domain.OutboxMessage) error

// OutboxResult counts what one relay pass did
type OutboxResult struct {
	Published int
	Failed    int
}

// OutboxRepository defines data access for the ticket outbox
type OutboxRepository interface {
	// Create enqueues a message
	Create(ctx context.Context, msg *domain.OutboxMessage) error

	// ProcessPending locks up to limit pending messages, publishes each with
	// publish and records the outcome in the same transaction
	ProcessPending(ctx context.Context, limit int, publish PublishFunc) (*OutboxResult, error)

	// RequeueFailed moves retryable failed messages back to pending
	RequeueFailed(ctx context.Context, limit int) (int64, error)

	// DeletePublishedBefore removes published messages older than cutoff
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
