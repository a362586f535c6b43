package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/mailer"
	"github.com/Winan03/AeroFlash-app/internal/metrics"
	"github.com/Winan03/AeroFlash-app/pkg/kafka"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/retry"
)

// Email outcomes recorded in metrics
const (
	emailSent    = "sent"
	emailFailed  = "failed"
	emailSkipped = "skipped"
)

// RecordConsumer polls and commits records. *kafka.Consumer implements it.
type RecordConsumer interface {
	Poll(ctx context.Context) ([]*kafka.Record, error)
	CommitRecords(ctx context.Context, records []*kafka.Record) error
}

// TicketSender delivers the confirmation email. *mailer.Mailer implements it.
type TicketSender interface {
	SendTicket(ctx context.Context, t *domain.Ticket) error
}

// NotificationWorkerConfig contains configuration for the notification worker
type NotificationWorkerConfig struct {
	// Retry controls delivery attempts per message
	Retry *retry.Config
	// PollBackoff is the pause after a failed poll
	PollBackoff time.Duration
}

// NotificationWorker emails passengers when their ticket is confirmed
type NotificationWorker struct {
	consumer RecordConsumer
	sender   TicketSender
	dlq      *retry.DLQHandler
	config   *NotificationWorkerConfig
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewNotificationWorker creates a new notification worker. dlqProducer may be
// nil, in which case exhausted messages are only logged.
func NewNotificationWorker(
	consumer RecordConsumer,
	sender TicketSender,
	dlqProducer retry.JSONProducer,
	config *NotificationWorkerConfig,
) *NotificationWorker {
	if config == nil {
		config = &NotificationWorkerConfig{}
	}
	if config.Retry == nil {
		config.Retry = retry.DefaultConfig()
	}
	if config.PollBackoff <= 0 {
		config.PollBackoff = time.Second
	}
	return &NotificationWorker{
		consumer: consumer,
		sender:   sender,
		dlq: retry.NewDLQHandler(dlqProducer, &retry.DLQConfig{
			Source: "notification-worker",
			Retry:  config.Retry,
		}),
		config: config,
		log:    logger.Get(),
		stopCh: make(chan struct{}),
	}
}

// Start begins consuming ticket events
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("notification worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting notification worker")
	w.wg.Add(1)
	go w.consumeLoop(ctx)
	return nil
}

// Stop stops the worker and waits for the in-flight batch
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping notification worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Notification worker stopped")
}

func (w *NotificationWorker) consumeLoop(ctx context.Context) {
	defer w.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		records, err := w.consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, kafka.ErrClientClosed) {
				return
			}
			w.log.Error("Failed to poll ticket events", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.config.PollBackoff):
			}
			continue
		}
		if len(records) == 0 {
			continue
		}

		w.HandleRecords(ctx, records)
		if err := w.consumer.CommitRecords(ctx, records); err != nil {
			w.log.Error("Failed to commit offsets", zap.Error(err))
		}
	}
}

// HandleRecords processes a batch. Failures never block the batch: every
// record is committed once handled.
func (w *NotificationWorker) HandleRecords(ctx context.Context, records []*kafka.Record) {
	for _, record := range records {
		if err := w.handleRecord(ctx, record); err != nil {
			metrics.RecordEmail(emailFailed)
			w.log.Error("Ticket email not delivered",
				zap.String("key", string(record.Key)),
				zap.Error(err),
			)
		}
	}
}

func (w *NotificationWorker) handleRecord(ctx context.Context, record *kafka.Record) error {
	var event domain.TicketEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal ticket event: %w", err)
	}
	if event.EventType != domain.EventTicketConfirmed || event.Ticket == nil {
		metrics.RecordEmail(emailSkipped)
		return nil
	}

	ticket := event.Ticket
	err := w.dlq.Process(ctx, record.Topic, string(record.Key), record.Value, kafka.Headers(record),
		func(ctx context.Context) error {
			err := w.sender.SendTicket(ctx, ticket)
			if errors.Is(err, mailer.ErrNoRecipient) {
				return retry.Permanent(err)
			}
			return err
		})
	if err != nil {
		return err
	}

	metrics.RecordEmail(emailSent)
	w.log.Info("Ticket email sent",
		zap.String("ticket_code", ticket.CodigoTicket),
	)
	return nil
}
