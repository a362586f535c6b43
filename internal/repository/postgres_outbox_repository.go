package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ OutboxRepository = (*PostgresOutboxRepository)(nil)

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool, now: time.Now}
}

func (r *PostgresOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	query := `
		INSERT INTO ticket_outbox (
			id, aggregate_type, aggregate_id, event_type,
			payload, topic, partition_key, status,
			retry_count, max_retries, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.pool.Exec(ctx, query,
		msg.ID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.Topic,
		msg.PartitionKey,
		msg.Status.String(),
		msg.RetryCount,
		msg.MaxRetries,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

func (r *PostgresOutboxRepository) ProcessPending(ctx context.Context, limit int, publish PublishFunc) (*OutboxResult, error) {
	result := &OutboxResult{}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT
				id, aggregate_type, aggregate_id, event_type,
				payload, topic, partition_key, status,
				retry_count, max_retries, last_error,
				created_at, published_at
			FROM ticket_outbox
			WHERE status = 'pending'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`, limit)
		if err != nil {
			return fmt.Errorf("failed to get pending messages: %w", err)
		}
		messages, err := scanOutboxMessages(rows)
		if err != nil {
			return err
		}

		for _, msg := range messages {
			if pubErr := publish(ctx, msg); pubErr != nil {
				msg.MarkAsFailed(pubErr.Error())
				if _, err := tx.Exec(ctx, `
					UPDATE ticket_outbox SET
						status = 'failed',
						last_error = $2,
						retry_count = retry_count + 1
					WHERE id = $1
				`, msg.ID, msg.LastError); err != nil {
					return fmt.Errorf("failed to mark message as failed: %w", err)
				}
				result.Failed++
				continue
			}

			msg.MarkAsPublished(r.now())
			if _, err := tx.Exec(ctx, `
				UPDATE ticket_outbox SET
					status = 'published',
					published_at = $2
				WHERE id = $1
			`, msg.ID, msg.PublishedAt); err != nil {
				return fmt.Errorf("failed to mark message as published: %w", err)
			}
			result.Published++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresOutboxRepository) RequeueFailed(ctx context.Context, limit int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ticket_outbox SET status = 'pending'
		WHERE id IN (
			SELECT id FROM ticket_outbox
			WHERE status = 'failed' AND retry_count < max_retries
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue failed messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresOutboxRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM ticket_outbox
		WHERE status = 'published' AND published_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete published messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOutboxMessages(rows pgx.Rows) ([]*domain.OutboxMessage, error) {
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		var (
			msg          domain.OutboxMessage
			status       string
			partitionKey *string
			lastError    *string
		)
		err := rows.Scan(
			&msg.ID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.Payload,
			&msg.Topic,
			&partitionKey,
			&status,
			&msg.RetryCount,
			&msg.MaxRetries,
			&lastError,
			&msg.CreatedAt,
			&msg.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.Status = domain.OutboxStatus(status)
		if partitionKey != nil {
			msg.PartitionKey = *partitionKey
		}
		if lastError != nil {
			msg.LastError = *lastError
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox messages: %w", err)
	}
	return messages, nil
}
