package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/repository"
)

// EventPublisher defines the interface for publishing ticket events
type EventPublisher interface {
	// PublishTicketConfirmed publishes a ticket confirmed event
	PublishTicketConfirmed(ctx context.Context, ticket *domain.Ticket) error

	// PublishTicketCancelled publishes a ticket cancelled event
	PublishTicketCancelled(ctx context.Context, ticket *domain.Ticket) error
}

// OutboxEventPublisher writes events to the transactional outbox. The outbox
// worker relays them to Kafka.
type OutboxEventPublisher struct {
	repo  repository.OutboxRepository
	topic string
	now   func() time.Time
}

var _ EventPublisher = (*OutboxEventPublisher)(nil)

// NewOutboxEventPublisher creates a new outbox publisher for topic
func NewOutboxEventPublisher(repo repository.OutboxRepository, topic string) *OutboxEventPublisher {
	if topic == "" {
		topic = "ticket-events"
	}
	return &OutboxEventPublisher{repo: repo, topic: topic, now: time.Now}
}

// PublishTicketConfirmed publishes a ticket confirmed event
func (p *OutboxEventPublisher) PublishTicketConfirmed(ctx context.Context, ticket *domain.Ticket) error {
	return p.enqueue(ctx, domain.EventTicketConfirmed, ticket)
}

// PublishTicketCancelled publishes a ticket cancelled event
func (p *OutboxEventPublisher) PublishTicketCancelled(ctx context.Context, ticket *domain.Ticket) error {
	return p.enqueue(ctx, domain.EventTicketCancelled, ticket)
}

func (p *OutboxEventPublisher) enqueue(ctx context.Context, eventType string, ticket *domain.Ticket) error {
	msg, err := domain.NewTicketOutboxMessage(eventType, p.topic, ticket, p.now())
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}
	if err := p.repo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", eventType, err)
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation for when the outbox is unavailable
type NoOpEventPublisher struct{}

var _ EventPublisher = (*NoOpEventPublisher)(nil)

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishTicketConfirmed(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

func (p *NoOpEventPublisher) PublishTicketCancelled(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}
