package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/core/port"
	"github.com/nverdi/social-app-backend/internal/infra/logger"
	"github.com/nverdi/social-app-backend/internal/infra/security"
	"github.com/nverdi/social-app-backend/internal/repository"
)

var (
	// ErrSessionNotFound indicates the registration session is unknown or expired.
	ErrSessionNotFound = errors.New("registration session not found")
	// ErrVerificationRequired indicates completion was attempted before the contact was verified.
	ErrVerificationRequired = errors.New("contact verification required")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
)

// RegistrationService drives the initiate -> verify -> complete onboarding
// flow backed by cache-resident sessions.
type RegistrationService struct {
	sessions          port.RegistrationSessionStore
	users             port.UserRepository
	verification      *VerificationService
	passwordValidator *security.PasswordValidator
	log               *zap.Logger
	now               func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(
	sessions port.RegistrationSessionStore,
	users port.UserRepository,
	verification *VerificationService,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		sessions:          sessions,
		users:             users,
		verification:      verification,
		passwordValidator: validator,
		log:               log,
		now:               time.Now,
	}
}

// WithClock overrides the time source.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

// Initiate opens a registration session for the contact and sends the first
// verification code.
func (s *RegistrationService) Initiate(ctx context.Context, contact domain.Contact) (*domain.RegistrationSession, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.verification.Issue(ctx, contact, domain.PurposeRegistration); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := domain.RegistrationSession{
		SessionID: uuid.NewString(),
		Contact:   contact,
		Step:      domain.RegistrationStepInitiated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create registration session: %w", err)
	}

	s.log.Info("registration initiated",
		zap.String("session_id", session.SessionID),
		zap.String("contact", logger.MaskContact(contact.Value)),
	)

	return &session, nil
}

// Resend issues a fresh code for an open session, replacing the pending one.
func (s *RegistrationService) Resend(ctx context.Context, sessionID string) error {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if _, err := s.verification.Issue(ctx, session.Contact, domain.PurposeRegistration); err != nil {
		return err
	}

	return nil
}

// Verify checks the submitted code and advances the session to the verified
// step.
func (s *RegistrationService) Verify(ctx context.Context, sessionID, code string) (*domain.RegistrationSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.verification.Validate(ctx, session.Contact, domain.PurposeRegistration, code); err != nil {
		return nil, err
	}

	session.Step = domain.RegistrationStepVerified
	session.Verified = true

	if err := s.sessions.Update(ctx, *session); err != nil {
		return nil, fmt.Errorf("update registration session: %w", err)
	}

	return session, nil
}

// Complete creates the account for a verified session and tears the session
// down.
func (s *RegistrationService) Complete(ctx context.Context, sessionID, fullName, password string) (*domain.User, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Verified {
		return nil, ErrVerificationRequired
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("full name is required")
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        session.Contact.Email(),
		Phone:        session.Contact.Phone(),
		PasswordHash: passwordHash,
		PasswordAlgo: "argon2id",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch session.Contact.Channel {
	case domain.ChannelEmail:
		user.EmailVerified = true
	case domain.ChannelPhone:
		user.PhoneVerified = true
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	session.Step = domain.RegistrationStepCompleted
	session.FullName = fullName
	if err := s.sessions.Delete(ctx, session.SessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("delete completed registration session",
			zap.String("session_id", session.SessionID),
			zap.Error(err),
		)
	}

	s.log.Info("registration completed",
		zap.String("user_id", user.ID),
		zap.String("contact", logger.MaskContact(session.Contact.Value)),
	)

	return &user, nil
}

func (s *RegistrationService) getSession(ctx context.Context, sessionID string) (*domain.RegistrationSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load registration session: %w", err)
	}

	return session, nil
}
