package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/metrics"
	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/pkg/kafka"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
)

// MessageProducer publishes records. *kafka.Producer implements it.
type MessageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polling for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages to relay in each poll
	BatchSize int
	// RetryInterval is the interval between requeueing failed messages
	RetryInterval time.Duration
	// CleanupInterval is the interval between cleanup of old published messages
	CleanupInterval time.Duration
	// RetentionPeriod is how long published messages are kept
	RetentionPeriod time.Duration
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:    500 * time.Millisecond,
		BatchSize:       100,
		RetryInterval:   5 * time.Second,
		CleanupInterval: time.Hour,
		RetentionPeriod: 7 * 24 * time.Hour,
	}
}

// OutboxWorker relays ticket_outbox rows to Kafka
type OutboxWorker struct {
	outboxRepo repository.OutboxRepository
	producer   MessageProducer
	config     *OutboxWorkerConfig
	log        *logger.Logger
	now        func() time.Time
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(
	outboxRepo repository.OutboxRepository,
	producer MessageProducer,
	config *OutboxWorkerConfig,
) *OutboxWorker {
	defaults := DefaultOutboxWorkerConfig()
	if config == nil {
		config = defaults
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaults.RetryInterval
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if config.RetentionPeriod <= 0 {
		config.RetentionPeriod = defaults.RetentionPeriod
	}

	return &OutboxWorker{
		outboxRepo: outboxRepo,
		producer:   producer,
		config:     config,
		log:        logger.Get(),
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
}

// Start starts the relay, retry and cleanup loops
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting outbox worker",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	w.wg.Add(3)
	go w.loop(ctx, w.config.PollInterval, w.RelayPending)
	go w.loop(ctx, w.config.RetryInterval, w.RequeueFailed)
	go w.loop(ctx, w.config.CleanupInterval, w.Cleanup)
	return nil
}

// Stop stops the worker and waits for the loops to exit
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping outbox worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Outbox worker stopped")
}

// IsRunning reports whether Start has been called without Stop
func (w *OutboxWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *OutboxWorker) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// RelayPending publishes one batch of pending messages
func (w *OutboxWorker) RelayPending(ctx context.Context) {
	result, err := w.outboxRepo.ProcessPending(ctx, w.config.BatchSize, w.publish)
	if err != nil {
		w.log.Error("Failed to relay pending outbox messages", zap.Error(err))
		return
	}
	metrics.RecordOutbox(string(domain.OutboxStatusPublished), result.Published)
	metrics.RecordOutbox(string(domain.OutboxStatusFailed), result.Failed)
	if result.Failed > 0 {
		w.log.Warn("Some outbox messages failed to publish",
			zap.Int("published", result.Published),
			zap.Int("failed", result.Failed),
		)
	}
}

// RequeueFailed moves retryable failed messages back to pending
func (w *OutboxWorker) RequeueFailed(ctx context.Context) {
	n, err := w.outboxRepo.RequeueFailed(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("Failed to requeue failed outbox messages", zap.Error(err))
		return
	}
	if n > 0 {
		metrics.RecordOutbox("requeued", int(n))
		w.log.Info("Requeued failed outbox messages", zap.Int64("count", n))
	}
}

// Cleanup deletes published messages past the retention period
func (w *OutboxWorker) Cleanup(ctx context.Context) {
	cutoff := w.now().Add(-w.config.RetentionPeriod)
	deleted, err := w.outboxRepo.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("Failed to cleanup old outbox messages", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.log.Info("Cleaned up old published outbox messages", zap.Int64("count", deleted))
	}
}

// publish sends one message keyed by its partition key (the ticket code)
func (w *OutboxWorker) publish(ctx context.Context, msg *domain.OutboxMessage) error {
	return w.producer.Produce(ctx, &kafka.Message{
		Topic: msg.Topic,
		Key:   msg.PartitionKey,
		Value: msg.Payload,
		Headers: map[string]string{
			"event_type":     msg.EventType,
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID,
			"message_id":     msg.ID,
			"content_type":   "application/json",
			"source":         "outbox-worker",
		},
		Timestamp: w.now(),
	})
}
