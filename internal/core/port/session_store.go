package port

import (
	"context"

	"github.com/nverdi/social-app-backend/internal/core/domain"
)

// RegistrationSessionStore owns the cache namespace holding registration
// sessions. Every write refreshes the TTL; absence after expiry is reported
// as repository.ErrNotFound.
type RegistrationSessionStore interface {
	Create(ctx context.Context, session domain.RegistrationSession) error
	Get(ctx context.Context, sessionID string) (*domain.RegistrationSession, error)
	Update(ctx context.Context, session domain.RegistrationSession) error
	Delete(ctx context.Context, sessionID string) error
}
