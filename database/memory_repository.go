package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront-service/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemorySessionRepository keeps sessions in process memory with the same
// JSON encoding and expiry rules as the Redis repository. Expired entries
// are dropped lazily on read.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	idem     map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memoryEntry),
		idem:     make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for expiry and UpdatedAt.
func (r *MemorySessionRepository) WithClock(now func() time.Time) *MemorySessionRepository {
	r.now = now
	return r
}

func (r *MemorySessionRepository) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return r.now().Add(ttl)
}

func (r *MemorySessionRepository) lookup(m map[string]memoryEntry, key string) ([]byte, bool) {
	r.mu.RLock()
	e, ok := m[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(r.now()) {
		r.mu.Lock()
		if cur, ok := m[key]; ok && cur.expired(r.now()) {
			delete(m, key)
		}
		r.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

func (r *MemorySessionRepository) GetSession(_ context.Context, sessionID string) (*models.SessionSnapshot, error) {
	data, ok := r.lookup(r.sessions, sessionID)
	if !ok {
		return nil, nil
	}
	var snapshot models.SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &snapshot, nil
}

func (r *MemorySessionRepository) SaveSession(_ context.Context, snapshot *models.SessionSnapshot) error {
	snapshot.UpdatedAt = r.now()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", snapshot.SessionID, err)
	}

	r.mu.Lock()
	r.sessions[snapshot.SessionID] = memoryEntry{data: data, expiresAt: r.expiry(r.ttl)}
	r.mu.Unlock()
	return nil
}

func (r *MemorySessionRepository) DeleteSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	return nil
}

func (r *MemorySessionRepository) GetIdempotency(_ context.Context, key string) (string, error) {
	data, ok := r.lookup(r.idem, key)
	if !ok {
		return "", nil
	}
	return string(data), nil
}

func (r *MemorySessionRepository) SetIdempotency(_ context.Context, key, orderID string, ttl time.Duration) error {
	r.mu.Lock()
	r.idem[key] = memoryEntry{data: []byte(orderID), expiresAt: r.expiry(ttl)}
	r.mu.Unlock()
	return nil
}
