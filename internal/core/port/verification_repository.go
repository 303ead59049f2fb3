package port

import (
	"context"
	"time"

	"github.com/nverdi/social-app-backend/internal/core/domain"
)

// VerificationCodeRepository exposes persistence behavior for the
// verification-code lifecycle. FindActive returns the latest unverified
// record for the key; expiry and attempt-cap policy live in the engine so
// a correct-but-expired code can still be reported as expired.
type VerificationCodeRepository interface {
	UpsertActive(ctx context.Context, contact domain.Contact, purpose domain.Purpose, code string, expiresAt time.Time) (*domain.VerificationCode, error)
	FindActive(ctx context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error)
	FindVerified(ctx context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error)
	IncrementAttempt(ctx context.Context, id uint64) error
	MarkVerified(ctx context.Context, id uint64) error
	IssueResetToken(ctx context.Context, id uint64) (string, error)
	FindByResetToken(ctx context.Context, contact domain.Contact, token string) (*domain.VerificationCode, error)
	MarkUsedAndDelete(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
	DeleteExpiredAndUsed(ctx context.Context, contact *domain.Contact) (int64, error)
}
