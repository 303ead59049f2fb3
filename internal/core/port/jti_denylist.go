package port

import (
	"context"
	"time"
)

// TokenDenylist records revoked access-token identifiers until their natural
// expiry. Backed by a shared store so revocation survives restarts and is
// visible to every process instance.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, reason string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
