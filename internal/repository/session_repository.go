package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	pkgredis "github.com/Winan03/AeroFlash-app/pkg/redis"
)

// SessionRepository stores issued admin sessions so they can be revoked
type SessionRepository interface {
	Save(ctx context.Context, session *domain.AdminSession) error
	Get(ctx context.Context, id string) (*domain.AdminSession, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionRepository keeps sessions as session:{id} with a TTL
type RedisSessionRepository struct {
	client *pkgredis.Client
	now    func() time.Time
}

var _ SessionRepository = (*RedisSessionRepository)(nil)

// NewRedisSessionRepository creates a new RedisSessionRepository
func NewRedisSessionRepository(client *pkgredis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.AdminSession) error {
	ttl := session.TTL(r.now())
	if ttl <= 0 {
		return domain.ErrInvalidToken
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*domain.AdminSession, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, domain.ErrSessionRevoked
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var s domain.AdminSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
