package port

import (
	"context"
	"time"

	"github.com/nverdi/social-app-backend/internal/core/domain"
)

// UserRepository exposes persistence behavior for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByContact(ctx context.Context, contact domain.Contact) (*domain.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string, passwordAlgo string, changedAt time.Time) error
	MarkContactVerified(ctx context.Context, id string, channel domain.Channel) error
}
