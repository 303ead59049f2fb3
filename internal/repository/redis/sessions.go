package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/repository"
)

const defaultSessionPrefix = "reg_session"

// SessionRepository persists registration sessions in Redis. The key TTL is
// the authoritative session timeout; every write re-applies it so a slow
// multi-step client keeps the session alive.
type SessionRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionRepository constructs a session repository with the provided
// Redis client, key prefix and TTL.
func NewSessionRepository(client *red.Client, keyPrefix string, ttl time.Duration) *SessionRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &SessionRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create stores a new session under its session id.
func (r *SessionRepository) Create(ctx context.Context, session domain.RegistrationSession) error {
	if strings.TrimSpace(session.SessionID) == "" {
		return errors.New("session id is required")
	}
	return r.write(ctx, session)
}

// Get retrieves session data, reporting cache-level absence as not found.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.RegistrationSession, error) {
	key := r.key(sessionID)
	if key == "" {
		return nil, errors.New("session id is required")
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get registration session: %w", err)
	}

	var session domain.RegistrationSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode registration session: %w", err)
	}

	return &session, nil
}

// Update overwrites the session and refreshes its TTL.
func (r *SessionRepository) Update(ctx context.Context, session domain.RegistrationSession) error {
	key := r.key(session.SessionID)
	if key == "" {
		return errors.New("session id is required")
	}

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis exists registration session: %w", err)
	}
	if exists == 0 {
		return repository.ErrNotFound
	}

	return r.write(ctx, session)
}

// Delete tears the session down once registration is durably persisted.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	key := r.key(sessionID)
	if key == "" {
		return errors.New("session id is required")
	}

	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis delete registration session: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// WithClock overrides the internal clock, used in tests.
func (r *SessionRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

func (r *SessionRepository) write(ctx context.Context, session domain.RegistrationSession) error {
	session.UpdatedAt = r.now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode registration session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(session.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set registration session: %w", err)
	}

	return nil
}

func (r *SessionRepository) key(sessionID string) string {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}
