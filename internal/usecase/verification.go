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
	"github.com/nverdi/social-app-backend/internal/infra/telemetry"
	"github.com/nverdi/social-app-backend/internal/repository"
)

const (
	defaultCodeLength  = 6
	defaultMaxAttempts = 5
)

var (
	// ErrCodeNotFound indicates no pending code exists for the contact and purpose.
	ErrCodeNotFound = errors.New("verification code not found")
	// ErrTooManyAttempts indicates the attempt cap for the pending code is exhausted.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrInvalidCode indicates the submitted code does not match the pending one.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrCodeExpired indicates the submitted code matched but its validity window elapsed.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrDeliveryFailed indicates the code could not be delivered to the contact.
	ErrDeliveryFailed = errors.New("verification code delivery failed")
	// ErrInvalidResetToken indicates the reset token is unknown, expired, or mismatched.
	ErrInvalidResetToken = errors.New("invalid reset token")
	// ErrResetTokenUsed indicates the reset token was already consumed.
	ErrResetTokenUsed = errors.New("reset token already used")
	// ErrContactTaken indicates the contact already belongs to a registered account.
	ErrContactTaken = errors.New("contact already registered")
)

// VerificationWindows maps each purpose to its validity duration.
type VerificationWindows struct {
	Registration      time.Duration
	PasswordReset     time.Duration
	EmailVerification time.Duration
	ChangeContact     time.Duration
}

// Window returns the validity duration for the purpose, falling back to the
// registration window.
func (w VerificationWindows) Window(purpose domain.Purpose) time.Duration {
	var d time.Duration
	switch purpose {
	case domain.PurposePasswordReset:
		d = w.PasswordReset
	case domain.PurposeEmailVerification:
		d = w.EmailVerification
	case domain.PurposeChangeEmail, domain.PurposeChangePhone:
		d = w.ChangeContact
	default:
		d = w.Registration
	}
	if d <= 0 {
		d = 30 * time.Minute
	}
	return d
}

// VerificationService owns the verification-code lifecycle: issuing, attempt
// accounting, validation, reset tokens, and cleanup.
type VerificationService struct {
	codes       port.VerificationCodeRepository
	users       port.UserRepository
	notifier    port.CodeNotifier
	events      port.EventPublisher
	metrics     *telemetry.Provider
	log         *zap.Logger
	windows     VerificationWindows
	codeLength  int
	maxAttempts int
	cleanup     bool
	now         func() time.Time
}

// NewVerificationService constructs the verification engine.
func NewVerificationService(
	codes port.VerificationCodeRepository,
	users port.UserRepository,
	notifier port.CodeNotifier,
	events port.EventPublisher,
	windows VerificationWindows,
	log *zap.Logger,
) *VerificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationService{
		codes:       codes,
		users:       users,
		notifier:    notifier,
		events:      events,
		log:         log,
		windows:     windows,
		codeLength:  defaultCodeLength,
		maxAttempts: defaultMaxAttempts,
		cleanup:     true,
		now:         time.Now,
	}
}

// WithClock overrides the time source.
func (s *VerificationService) WithClock(now func() time.Time) *VerificationService {
	s.now = now
	return s
}

// WithCodeLength overrides the generated code length.
func (s *VerificationService) WithCodeLength(length int) *VerificationService {
	if length > 0 {
		s.codeLength = length
	}
	return s
}

// WithMaxAttempts overrides the attempt cap.
func (s *VerificationService) WithMaxAttempts(max int) *VerificationService {
	if max > 0 {
		s.maxAttempts = max
	}
	return s
}

// WithMetrics attaches the metric provider.
func (s *VerificationService) WithMetrics(metrics *telemetry.Provider) *VerificationService {
	s.metrics = metrics
	return s
}

// WithCleanupOnIssue toggles the opportunistic purge of stale rows before
// issuing a new code.
func (s *VerificationService) WithCleanupOnIssue(enabled bool) *VerificationService {
	s.cleanup = enabled
	return s
}

// MaxAttempts exposes the configured attempt cap.
func (s *VerificationService) MaxAttempts() int {
	return s.maxAttempts
}

// Issue generates a fresh code for the contact and purpose, persists it as
// the single pending code for that key, and delivers it. A delivery failure
// rolls the stored code back so a retry starts clean.
func (s *VerificationService) Issue(ctx context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	if purpose == domain.PurposeRegistration && s.users != nil {
		existing, err := s.users.GetByContact(ctx, contact)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check existing account: %w", err)
		}
		if existing != nil {
			return nil, ErrContactTaken
		}
	}

	if s.cleanup {
		if _, err := s.codes.DeleteExpiredAndUsed(ctx, &contact); err != nil {
			s.log.Warn("purge stale verification codes",
				zap.String("contact", logger.MaskContact(contact.Value)),
				zap.Error(err),
			)
		}
	}

	code, err := security.GenerateNumericCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.windows.Window(purpose))

	record, err := s.codes.UpsertActive(ctx, contact, purpose, code, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}

	if err := s.notifier.SendCode(ctx, contact, code, purpose); err != nil {
		if delErr := s.codes.Delete(ctx, record.ID); delErr != nil {
			s.log.Warn("roll back undelivered code", zap.Uint64("code_id", record.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	s.metrics.CodeIssued(string(purpose), string(contact.Channel))
	s.publishIssued(ctx, record, now)

	return record, nil
}

// Validate checks a submitted code against the pending record. Every call
// below the attempt cap consumes an attempt, including the final successful
// one; once the cap is reached the counter is left alone and the call fails
// outright. Expiry is reported only for a matching code.
func (s *VerificationService) Validate(ctx context.Context, contact domain.Contact, purpose domain.Purpose, code string) (*domain.VerificationCode, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	record, err := s.codes.FindActive(ctx, contact, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.CodeValidated(string(purpose), "not_found")
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("load verification code: %w", err)
	}

	// Once the cap is reached the counter stays put; it must never pass
	// the configured maximum.
	if record.AttemptsExhausted(s.maxAttempts) {
		s.metrics.CodeValidated(string(purpose), "too_many_attempts")
		return nil, ErrTooManyAttempts
	}

	if err := s.codes.IncrementAttempt(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("record verification attempt: %w", err)
	}
	record.AttemptCount++

	if record.Code != code {
		s.metrics.CodeValidated(string(purpose), "invalid")
		return nil, ErrInvalidCode
	}

	if record.IsExpired(s.now().UTC()) {
		s.metrics.CodeValidated(string(purpose), "expired")
		return nil, ErrCodeExpired
	}

	if err := s.codes.MarkVerified(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("mark code verified: %w", err)
	}
	record.Verified = true

	s.metrics.CodeValidated(string(purpose), "verified")
	s.publishVerified(ctx, record)

	return record, nil
}

// IssueResetToken mints a single-use reset token. The precondition is a
// verified, unexpired password-reset record for the contact; its absence
// maps to ErrCodeNotFound.
func (s *VerificationService) IssueResetToken(ctx context.Context, contact domain.Contact) (string, error) {
	record, err := s.FindVerified(ctx, contact, domain.PurposePasswordReset)
	if err != nil {
		return "", err
	}

	token, err := s.codes.IssueResetToken(ctx, record.ID)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	return token, nil
}

// ValidateResetToken resolves a reset token without consuming it, so the
// credential update can happen before the token is burned.
func (s *VerificationService) ValidateResetToken(ctx context.Context, contact domain.Contact, token string) (*domain.VerificationCode, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrInvalidResetToken
	}

	record, err := s.codes.FindByResetToken(ctx, contact, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("load reset token: %w", err)
	}

	if record.TokenUsed {
		return nil, ErrResetTokenUsed
	}

	return record, nil
}

// ConsumeResetToken burns a reset token after the credential update landed.
func (s *VerificationService) ConsumeResetToken(ctx context.Context, codeID uint64) error {
	if err := s.codes.MarkUsedAndDelete(ctx, codeID); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}

// FindVerified returns the verified, unexpired record for the contact and
// purpose, mapping absence to ErrCodeNotFound.
func (s *VerificationService) FindVerified(ctx context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error) {
	record, err := s.codes.FindVerified(ctx, contact, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("load verified code: %w", err)
	}
	return record, nil
}

// Cleanup removes expired and consumed verification rows across all contacts.
func (s *VerificationService) Cleanup(ctx context.Context) (int64, error) {
	removed, err := s.codes.DeleteExpiredAndUsed(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cleanup verification codes: %w", err)
	}
	return removed, nil
}

func (s *VerificationService) publishIssued(ctx context.Context, record *domain.VerificationCode, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.CodeIssuedEvent{
		EventID:       uuid.NewString(),
		Purpose:       record.Purpose,
		Channel:       record.Contact.Channel,
		MaskedContact: logger.MaskContact(record.Contact.Value),
		IssuedAt:      at,
		ExpiresAt:     record.ExpiresAt,
	}
	if err := s.events.PublishCodeIssued(ctx, event); err != nil {
		s.log.Warn("publish code issued event", zap.Error(err))
	}
}

func (s *VerificationService) publishVerified(ctx context.Context, record *domain.VerificationCode) {
	if s.events == nil {
		return
	}

	event := domain.CodeVerifiedEvent{
		EventID:       uuid.NewString(),
		Purpose:       record.Purpose,
		Channel:       record.Contact.Channel,
		MaskedContact: logger.MaskContact(record.Contact.Value),
		VerifiedAt:    s.now().UTC(),
		Attempts:      record.AttemptCount,
	}
	if err := s.events.PublishCodeVerified(ctx, event); err != nil {
		s.log.Warn("publish code verified event", zap.Error(err))
	}
}
