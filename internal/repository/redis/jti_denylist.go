package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/nverdi/social-app-backend/internal/core/port"
)

const defaultDenylistPrefix = "revoked"

// DenylistRepository records revoked access-token JTIs in Redis, each entry
// expiring with the token it denies. Sharing the store across process
// instances replaces the per-process blacklist the original design used.
type DenylistRepository struct {
	client *red.Client
	prefix string
}

// NewDenylistRepository wires a Redis client into a token denylist.
func NewDenylistRepository(client *red.Client, keyPrefix string) *DenylistRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultDenylistPrefix
	}

	return &DenylistRepository{client: client, prefix: prefix}
}

// Revoke stores the supplied JTI with reason and TTL matching the token's
// remaining lifetime.
func (r *DenylistRepository) Revoke(ctx context.Context, jti string, reason string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	key := r.key(jti)
	if key == "" {
		return errors.New("jti must not be empty")
	}

	if err := r.client.Set(ctx, key, reason, ttl).Err(); err != nil {
		return fmt.Errorf("redis set revoked jti: %w", err)
	}

	return nil
}

// IsRevoked reports whether the JTI has been revoked.
func (r *DenylistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := r.key(jti)
	if key == "" {
		return false, errors.New("jti must not be empty")
	}

	if err := r.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get revoked jti: %w", err)
	}

	return true, nil
}

func (r *DenylistRepository) key(jti string) string {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}

var _ port.TokenDenylist = (*DenylistRepository)(nil)
