package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-service/models"

	"github.com/redis/go-redis/v9"
)

// SessionRepository stores session snapshots and purchase idempotency keys.
// GetSession returns (nil, nil) when the session does not exist or expired.
type SessionRepository interface {
	GetSession(ctx context.Context, sessionID string) (*models.SessionSnapshot, error)
	SaveSession(ctx context.Context, snapshot *models.SessionSnapshot) error
	DeleteSession(ctx context.Context, sessionID string) error
	GetIdempotency(ctx context.Context, key string) (string, error)
	SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error
}

var (
	_ SessionRepository = (*RedisSessionRepository)(nil)
	_ SessionRepository = (*MemorySessionRepository)(nil)
)

type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return "storefront:session:" + sessionID
}

func idempotencyKey(key string) string {
	return "idem:checkout:" + key
}

func (r *RedisSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var snapshot models.SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &snapshot, nil
}

// SaveSession stamps UpdatedAt and refreshes the session TTL.
func (r *RedisSessionRepository) SaveSession(ctx context.Context, snapshot *models.SessionSnapshot) error {
	snapshot.UpdatedAt = time.Now()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", snapshot.SessionID, err)
	}
	return r.client.Set(ctx, sessionKey(snapshot.SessionID), data, r.ttl).Err()
}

func (r *RedisSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

// GetIdempotency returns the order id stored for key, or "" if none.
func (r *RedisSessionRepository) GetIdempotency(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisSessionRepository) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, idempotencyKey(key), orderID, ttl).Err()
}
