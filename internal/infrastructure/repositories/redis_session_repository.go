package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/infrastructure/auth"
)

// RedisSessionRepository implements domain.SessionRepository using Redis.
// It is selected when a redis address is configured; the key TTL mirrors the
// session expiry so dead sessions vanish without a sweep.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository creates a redis-backed session repository
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) domain.SessionRepository {
	return &RedisSessionRepository{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

// Create implements domain.SessionRepository. The store assigns the token
// and the expiry window; callers only supply the owning user and email.
func (r *RedisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		token, err := auth.NewSessionToken()
		if err != nil {
			return err
		}
		session.ID = token
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	key := r.prefix + session.ID
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// FindValid implements domain.SessionRepository
func (r *RedisSessionRepository) FindValid(ctx context.Context, sessionID string) (*domain.Session, error) {
	key := r.prefix + sessionID
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	// The key TTL normally takes care of this; the check covers clock skew
	// between writer and reader.
	if session.ExpiresAt.Before(time.Now()) {
		r.client.Del(ctx, key)
		return nil, domain.ErrSessionExpired
	}

	return &session, nil
}

// Delete implements domain.SessionRepository; idempotent.
func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.prefix+sessionID).Err()
}

// DeleteExpired implements domain.SessionRepository. Redis expires keys by
// TTL on its own, so the sweep has nothing to do here.
func (r *RedisSessionRepository) DeleteExpired(ctx context.Context) error {
	return nil
}
