package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/mailer"
	"github.com/Winan03/AeroFlash-app/pkg/kafka"
	"github.com/Winan03/AeroFlash-app/pkg/retry"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	failures int
	err      error
	calls    int
}

func (s *fakeSender) SendTicket(ctx context.Context, t *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp timeout")
	}
	s.sent = append(s.sent, t.CodigoTicket)
	return nil
}

func (s *fakeSender) sentCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

type fakeDLQ struct {
	topics []string
}

func (d *fakeDLQ) ProduceJSON(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error {
	d.topics = append(d.topics, topic)
	return nil
}

type fakeConsumer struct {
	mu        sync.Mutex
	batches   [][]*kafka.Record
	committed int
}

func (c *fakeConsumer) Poll(ctx context.Context) ([]*kafka.Record, error) {
	c.mu.Lock()
	if len(c.batches) > 0 {
		batch := c.batches[0]
		c.batches = c.batches[1:]
		c.mu.Unlock()
		return batch, nil
	}
	c.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *fakeConsumer) CommitRecords(ctx context.Context, records []*kafka.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed += len(records)
	return nil
}

func (c *fakeConsumer) committedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Multiplier: 1}
}

func eventRecord(t *testing.T, eventType, code, email string) *kafka.Record {
	t.Helper()
	value, err := json.Marshal(domain.TicketEvent{
		EventType:  eventType,
		OccurredAt: time.Now(),
		Ticket: &domain.Ticket{
			CodigoTicket: code,
			Pasajero:     domain.Passenger{Correo: email},
		},
	})
	require.NoError(t, err)
	return &kafka.Record{Topic: "ticket-events", Key: []byte(code), Value: value}
}

func TestNotificationWorker_SendsConfirmedOnly(t *testing.T) {
	sender := &fakeSender{}
	w := NewNotificationWorker(nil, sender, nil, &NotificationWorkerConfig{Retry: fastRetry()})

	w.HandleRecords(context.Background(), []*kafka.Record{
		eventRecord(t, domain.EventTicketConfirmed, "AF1111AA", "a@example.com"),
		eventRecord(t, domain.EventTicketCancelled, "AF2222BB", "b@example.com"),
		{Topic: "ticket-events", Value: []byte("{not json")},
	})

	assert.Equal(t, []string{"AF1111AA"}, sender.sentCodes())
}

func TestNotificationWorker_RetriesTransientFailures(t *testing.T) {
	sender := &fakeSender{failures: 2}
	w := NewNotificationWorker(nil, sender, nil, &NotificationWorkerConfig{Retry: fastRetry()})

	w.HandleRecords(context.Background(), []*kafka.Record{
		eventRecord(t, domain.EventTicketConfirmed, "AF1111AA", "a@example.com"),
	})

	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, []string{"AF1111AA"}, sender.sentCodes())
}

func TestNotificationWorker_ExhaustedGoesToDeadLetter(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	dlq := &fakeDLQ{}
	w := NewNotificationWorker(nil, sender, dlq, &NotificationWorkerConfig{Retry: fastRetry()})

	w.HandleRecords(context.Background(), []*kafka.Record{
		eventRecord(t, domain.EventTicketConfirmed, "AF1111AA", "a@example.com"),
	})

	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, []string{"ticket-events.dlq"}, dlq.topics)
}

func TestNotificationWorker_NoRecipientIsNotRetried(t *testing.T) {
	sender := &fakeSender{err: mailer.ErrNoRecipient}
	w := NewNotificationWorker(nil, sender, nil, &NotificationWorkerConfig{Retry: fastRetry()})

	w.HandleRecords(context.Background(), []*kafka.Record{
		eventRecord(t, domain.EventTicketConfirmed, "AF1111AA", ""),
	})

	assert.Equal(t, 1, sender.calls)
}

func TestNotificationWorker_StartStopCommits(t *testing.T) {
	consumer := &fakeConsumer{batches: [][]*kafka.Record{{
		eventRecord(t, domain.EventTicketConfirmed, "AF1111AA", "a@example.com"),
		eventRecord(t, domain.EventTicketConfirmed, "AF2222BB", "b@example.com"),
	}}}
	sender := &fakeSender{}
	w := NewNotificationWorker(consumer, sender, nil, &NotificationWorkerConfig{Retry: fastRetry()})

	require.NoError(t, w.Start(context.Background()))
	assert.Eventually(t, func() bool { return consumer.committedCount() == 2 }, time.Second, 5*time.Millisecond)

	w.Stop()
	assert.Equal(t, []string{"AF1111AA", "AF2222BB"}, sender.sentCodes())
}
