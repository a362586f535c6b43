package domain

import (
	"encoding/json"
	"time"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// IsValid checks if the status is a known OutboxStatus
func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusPublished, OutboxStatusFailed:
		return true
	}
	return false
}

func (s OutboxStatus) String() string {
	return string(s)
}

// Ticket event types
const (
	EventTicketConfirmed = "ticket.confirmed"
	EventTicketCancelled = "ticket.cancelled"

	AggregateTicket = "ticket"
	defaultMaxRetry = 5
)

// OutboxMessage is a row of ticket_outbox
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Topic         string
	PartitionKey  string
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// TicketEvent is the payload published for ticket lifecycle changes
type TicketEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Ticket     *Ticket   `json:"ticket"`
}

// NewTicketOutboxMessage wraps a ticket event for the outbox, keyed by code
func NewTicketOutboxMessage(eventType, topic string, ticket *Ticket, now time.Time) (*OutboxMessage, error) {
	payload, err := json.Marshal(TicketEvent{
		EventType:  eventType,
		OccurredAt: now.UTC(),
		Ticket:     ticket,
	})
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		AggregateType: AggregateTicket,
		AggregateID:   ticket.CodigoTicket,
		EventType:     eventType,
		Payload:       payload,
		Topic:         topic,
		PartitionKey:  ticket.CodigoTicket,
		Status:        OutboxStatusPending,
		MaxRetries:    defaultMaxRetry,
		CreatedAt:     now,
	}, nil
}

// CanRetry checks if a failed message has attempts left
func (m *OutboxMessage) CanRetry() bool {
	return m.Status == OutboxStatusFailed && m.RetryCount < m.MaxRetries
}

// MarkAsPublished records a successful publish
func (m *OutboxMessage) MarkAsPublished(now time.Time) {
	m.Status = OutboxStatusPublished
	m.PublishedAt = &now
}

// MarkAsFailed records a failed publish attempt
func (m *OutboxMessage) MarkAsFailed(err string) {
	m.Status = OutboxStatusFailed
	m.LastError = err
	m.RetryCount++
}
