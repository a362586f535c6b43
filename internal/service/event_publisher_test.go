package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

func TestOutboxEventPublisher_Enqueues(t *testing.T) {
	var got []*domain.OutboxMessage
	repo := &MockOutboxRepository{
		CreateFunc: func(ctx context.Context, msg *domain.OutboxMessage) error {
			got = append(got, msg)
			return nil
		},
	}
	pub := NewOutboxEventPublisher(repo, "")
	pub.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	ticket := &domain.Ticket{CodigoTicket: "AF1234AB", Estado: domain.StatusConfirmado}

	require.NoError(t, pub.PublishTicketConfirmed(context.Background(), ticket))
	require.NoError(t, pub.PublishTicketCancelled(context.Background(), ticket))

	require.Len(t, got, 2)
	assert.Equal(t, "ticket-events", got[0].Topic)
	assert.Equal(t, "AF1234AB", got[0].PartitionKey)
	assert.Equal(t, domain.EventTicketConfirmed, got[0].EventType)
	assert.Equal(t, domain.EventTicketCancelled, got[1].EventType)
	assert.Equal(t, domain.OutboxStatusPending, got[0].Status)

	var ev domain.TicketEvent
	require.NoError(t, json.Unmarshal(got[0].Payload, &ev))
	assert.Equal(t, "AF1234AB", ev.Ticket.CodigoTicket)
}

func TestOutboxEventPublisher_WrapsError(t *testing.T) {
	cause := errors.New("pool closed")
	repo := &MockOutboxRepository{
		CreateFunc: func(ctx context.Context, msg *domain.OutboxMessage) error { return cause },
	}
	pub := NewOutboxEventPublisher(repo, "custom")

	err := pub.PublishTicketConfirmed(context.Background(), &domain.Ticket{CodigoTicket: "AF1234AB"})
	assert.ErrorIs(t, err, cause)
}

func TestNoOpEventPublisher(t *testing.T) {
	pub := NewNoOpEventPublisher()
	assert.NoError(t, pub.PublishTicketConfirmed(context.Background(), nil))
	assert.NoError(t, pub.PublishTicketCancelled(context.Background(), nil))
}
