package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whitepeony/storefront/internal/domain"
	apperrors "github.com/whitepeony/storefront/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionRepository implements repository.SessionRepository using Redis.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the session for a user.
func (r *SessionRepository) Get(ctx context.Context, userID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("session", userID)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

// Save persists a session. When the session carries an expiry, the key TTL
// is capped at that expiry so Redis never outlives the token.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := r.ttl
	if !session.ExpiresAt.IsZero() {
		if remaining := time.Until(session.ExpiresAt); remaining > 0 && remaining < ttl {
			ttl = remaining
		}
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.UserID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Delete removes the session for a user.
func (r *SessionRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
