package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/pkg/database"
	pkgredis "github.com/Winan03/AeroFlash-app/pkg/redis"
)

// skipIfNoIntegration skips the test if INTEGRATION_TEST env var is not set
func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getRedisClient connects to DB 15 and flushes it
func getRedisClient(t *testing.T) *pkgredis.Client {
	skipIfNoIntegration(t)

	cfg := pkgredis.DefaultConfig()
	cfg.Host = envOr("TEST_REDIS_HOST", "localhost")
	cfg.Password = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.DB = 15
	cfg.PoolSize = 10

	ctx := context.Background()
	client, err := pkgredis.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create Redis client: %v", err)
	}
	if err := client.Client().FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// getPostgresPool connects, migrates and truncates the outbox
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	cfg := database.DefaultPostgresConfig()
	cfg.Host = envOr("TEST_POSTGRES_HOST", "localhost")
	cfg.User = envOr("TEST_POSTGRES_USER", "postgres")
	cfg.Password = envOr("TEST_POSTGRES_PASSWORD", "postgres")
	cfg.Database = envOr("TEST_POSTGRES_DB", "aeroflash_test")
	if port, err := strconv.Atoi(envOr("TEST_POSTGRES_PORT", "5432")); err == nil {
		cfg.Port = port
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool().Exec(ctx, "TRUNCATE ticket_outbox")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db.Pool()
}

func TestRedisSeatInventory_ClaimRelease(t *testing.T) {
	client := getRedisClient(t)
	inv := NewRedisSeatInventory(client)
	ctx := context.Background()

	res, err := inv.Claim(ctx, "f1", "1A", "AF1234AB")
	require.NoError(t, err)
	assert.Equal(t, ClaimErrNotInitialized, res.ErrorCode)

	require.NoError(t, inv.Seed(ctx, "f1", []string{"1A", "1B"}, []string{"1C"}, false))

	res, err = inv.Claim(ctx, "f1", "1A", "AF1234AB")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = inv.Claim(ctx, "f1", "1A", "AF9999ZZ")
	require.NoError(t, err)
	assert.Equal(t, ClaimErrSeatTaken, res.ErrorCode)

	res, err = inv.Claim(ctx, "f1", "1C", "AF9999ZZ")
	require.NoError(t, err)
	assert.Equal(t, ClaimErrSeatTaken, res.ErrorCode)

	res, err = inv.Claim(ctx, "f1", "9Z", "AF9999ZZ")
	require.NoError(t, err)
	assert.Equal(t, ClaimErrSeatNotFound, res.ErrorCode)

	// only the holder can release
	require.NoError(t, inv.Release(ctx, "f1", "1A", "AF9999ZZ"))
	snap, err := inv.Snapshot(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "AF1234AB", snap["1A"])

	require.NoError(t, inv.Release(ctx, "f1", "1A", "AF1234AB"))
	snap, err = inv.Snapshot(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, SeatStateAvailable, snap["1A"])
	assert.Equal(t, SeatStateOccupied, snap["1C"])
}

func TestRedisSeatInventory_SeedInitKeepsExisting(t *testing.T) {
	client := getRedisClient(t)
	inv := NewRedisSeatInventory(client)
	ctx := context.Background()

	require.NoError(t, inv.Seed(ctx, "f1", []string{"1A"}, nil, false))
	_, err := inv.Claim(ctx, "f1", "1A", "AF1234AB")
	require.NoError(t, err)

	require.NoError(t, inv.Seed(ctx, "f1", []string{"1A", "1B"}, nil, false))
	snap, err := inv.Snapshot(ctx, "f1")
	require.NoError(t, err)
	assert.Len(t, snap, 1)

	require.NoError(t, inv.Seed(ctx, "f1", []string{"1A", "1B"}, nil, true))
	snap, err = inv.Snapshot(ctx, "f1")
	require.NoError(t, err)
	assert.Len(t, snap, 2)

	require.NoError(t, inv.Drop(ctx, "f1"))
	snap, err = inv.Snapshot(ctx, "f1")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestRedisSeatInventory_ConcurrentClaims(t *testing.T) {
	client := getRedisClient(t)
	inv := NewRedisSeatInventory(client)
	ctx := context.Background()
	require.NoError(t, inv.Seed(ctx, "f1", []string{"1A"}, nil, true))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := inv.Claim(ctx, "f1", "1A", fmt.Sprintf("AF%04dXX", i))
			if err == nil && res.Success {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRedisSessionRepository(t *testing.T) {
	client := getRedisClient(t)
	repo := NewRedisSessionRepository(client)
	ctx := context.Background()

	s := &domain.AdminSession{
		ID:        "sess-1",
		Username:  "admin",
		Role:      domain.RoleAdmin,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	require.NoError(t, repo.Delete(ctx, "sess-1"))
	_, err = repo.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)

	expired := *s
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	assert.ErrorIs(t, repo.Save(ctx, &expired), domain.ErrInvalidToken)
}

func TestPostgresOutboxRepository_ProcessPending(t *testing.T) {
	pool := getPostgresPool(t)
	repo := NewPostgresOutboxRepository(pool)
	ctx := context.Background()

	for _, code := range []string{"AF0001AA", "AF0002BB"} {
		msg, err := domain.NewTicketOutboxMessage(domain.EventTicketConfirmed, "ticket-events",
			&domain.Ticket{CodigoTicket: code}, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, msg))
	}

	var seen []string
	res, err := repo.ProcessPending(ctx, 10, func(ctx context.Context, msg *domain.OutboxMessage) error {
		var ev domain.TicketEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		seen = append(seen, ev.Ticket.CodigoTicket)
		if msg.AggregateID == "AF0002BB" {
			return errors.New("broker unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 1, res.Failed)
	assert.ElementsMatch(t, []string{"AF0001AA", "AF0002BB"}, seen)

	n, err := repo.RequeueFailed(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err = repo.ProcessPending(ctx, 10, func(ctx context.Context, msg *domain.OutboxMessage) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	deleted, err := repo.DeletePublishedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
