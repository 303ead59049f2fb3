package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/core/port"
	"github.com/nverdi/social-app-backend/internal/infra/logger"
	"github.com/nverdi/social-app-backend/internal/infra/security"
	"github.com/nverdi/social-app-backend/internal/repository"
)

const (
	defaultResetRateWindow = time.Hour
	defaultResetRateMax    = 3
	resetRateLimitPrefix   = "pwd_reset"
)

// ErrRateLimited indicates the caller exhausted the reset-request budget for the window.
var ErrRateLimited = errors.New("too many requests")

// PasswordResetService drives the request -> verify -> reset credential flow.
// RequestCode never discloses whether an account exists for the contact.
type PasswordResetService struct {
	users             port.UserRepository
	verification      *VerificationService
	rateLimiter       port.RateLimitStore
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	log               *zap.Logger
	rateWindow        time.Duration
	rateMax           int
	now               func() time.Time
}

// NewPasswordResetService constructs a password reset service.
func NewPasswordResetService(
	users port.UserRepository,
	verification *VerificationService,
	rateLimiter port.RateLimitStore,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		users:             users,
		verification:      verification,
		rateLimiter:       rateLimiter,
		events:            events,
		passwordValidator: validator,
		log:               log,
		rateWindow:        defaultResetRateWindow,
		rateMax:           defaultResetRateMax,
		now:               time.Now,
	}
}

// WithClock overrides the time source.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// WithRateLimit overrides the reset-request budget.
func (s *PasswordResetService) WithRateLimit(window time.Duration, max int) *PasswordResetService {
	if window > 0 {
		s.rateWindow = window
	}
	if max > 0 {
		s.rateMax = max
	}
	return s
}

// RequestCode sends a reset code when an account exists for the contact.
// The outcome is identical either way so callers cannot probe which
// contacts are registered; unknown contacts burn comparable work before
// returning.
func (s *PasswordResetService) RequestCode(ctx context.Context, contact domain.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}

	if err := s.checkRateLimit(ctx, contact); err != nil {
		return err
	}

	user, err := s.users.GetByContact(ctx, contact)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load account: %w", err)
	}

	if user == nil {
		s.equalizeWork()
		s.log.Info("password reset requested for unknown contact",
			zap.String("contact", logger.MaskContact(contact.Value)),
		)
		return nil
	}

	if _, err := s.verification.Issue(ctx, contact, domain.PurposePasswordReset); err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			return err
		}
		return fmt.Errorf("issue reset code: %w", err)
	}

	return nil
}

// VerifyCode validates the submitted reset code and mints the single-use
// token the actual credential update must present.
func (s *PasswordResetService) VerifyCode(ctx context.Context, contact domain.Contact, code string) (string, error) {
	if _, err := s.verification.Validate(ctx, contact, domain.PurposePasswordReset, code); err != nil {
		return "", err
	}

	token, err := s.verification.IssueResetToken(ctx, contact)
	if err != nil {
		return "", err
	}

	return token, nil
}

// ResetPassword updates the credential behind a valid reset token. The token
// is consumed only after the new password landed, so a failed update leaves
// the token reusable.
func (s *PasswordResetService) ResetPassword(ctx context.Context, contact domain.Contact, token, newPassword string) error {
	record, err := s.verification.ValidateResetToken(ctx, contact, token)
	if err != nil {
		return err
	}

	user, err := s.users.GetByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("load account: %w", err)
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	changedAt := s.now().UTC()
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash, "argon2id", changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.verification.ConsumeResetToken(ctx, record.ID); err != nil {
		s.log.Warn("consume reset token after password update",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	s.publishPasswordChanged(ctx, user, contact, changedAt)

	return nil
}

func (s *PasswordResetService) checkRateLimit(ctx context.Context, contact domain.Contact) error {
	if s.rateLimiter == nil {
		return nil
	}

	identifier := fmt.Sprintf("%s:%s", resetRateLimitPrefix, contact.Value)
	now := s.now().UTC()

	if err := s.rateLimiter.TrimWindow(ctx, identifier, s.rateWindow, now); err != nil {
		return fmt.Errorf("trim rate limit window: %w", err)
	}

	count, err := s.rateLimiter.CountAttempts(ctx, identifier, s.rateWindow, now)
	if err != nil {
		return fmt.Errorf("count reset requests: %w", err)
	}
	if count >= s.rateMax {
		return ErrRateLimited
	}

	if err := s.rateLimiter.RecordAttempt(ctx, identifier, now); err != nil {
		return fmt.Errorf("record reset request: %w", err)
	}

	return nil
}

// equalizeWork burns roughly the cost of issuing a code so the unknown-contact
// path does not return measurably faster.
func (s *PasswordResetService) equalizeWork() {
	code, err := security.GenerateNumericCode(defaultCodeLength)
	if err != nil {
		return
	}
	_, _ = security.HashPassword(code)
}

func (s *PasswordResetService) publishPasswordChanged(ctx context.Context, user *domain.User, contact domain.Contact, changedAt time.Time) {
	if s.events == nil {
		return
	}

	event := domain.PasswordChangedEvent{
		EventID:       uuid.NewString(),
		UserID:        user.ID,
		MaskedContact: logger.MaskContact(contact.Value),
		ChangedAt:     changedAt,
		Source:        "password_reset",
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.log.Warn("publish password changed event", zap.Error(err))
	}
}
