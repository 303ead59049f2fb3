package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/core/port"
	"github.com/nverdi/social-app-backend/internal/repository"
)

var (
	// ErrUserNotFound indicates no account matches the identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrContactAlreadyVerified indicates the contact already passed verification.
	ErrContactAlreadyVerified = errors.New("contact already verified")
	// ErrContactMissing indicates the account carries no contact for the requested channel.
	ErrContactMissing = errors.New("no contact on record for channel")
)

// ContactService verifies contacts attached to existing accounts, covering
// the post-registration email confirmation resend flow.
type ContactService struct {
	users        port.UserRepository
	verification *VerificationService
	log          *zap.Logger
	now          func() time.Time
}

// NewContactService constructs a contact verification service.
func NewContactService(users port.UserRepository, verification *VerificationService, log *zap.Logger) *ContactService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{
		users:        users,
		verification: verification,
		log:          log,
		now:          time.Now,
	}
}

// RequestVerification sends a confirmation code to the account's contact on
// the given channel.
func (s *ContactService) RequestVerification(ctx context.Context, userID string, channel domain.Channel) error {
	user, contact, err := s.resolveContact(ctx, userID, channel)
	if err != nil {
		return err
	}

	if user.ContactVerified(channel) {
		return ErrContactAlreadyVerified
	}

	if _, err := s.verification.Issue(ctx, contact, domain.PurposeEmailVerification); err != nil {
		return err
	}

	return nil
}

// Confirm validates the submitted code and flips the account's verified flag
// for the channel.
func (s *ContactService) Confirm(ctx context.Context, userID string, channel domain.Channel, code string) error {
	user, contact, err := s.resolveContact(ctx, userID, channel)
	if err != nil {
		return err
	}

	if user.ContactVerified(channel) {
		return ErrContactAlreadyVerified
	}

	if _, err := s.verification.Validate(ctx, contact, domain.PurposeEmailVerification, code); err != nil {
		return err
	}

	if err := s.users.MarkContactVerified(ctx, user.ID, channel); err != nil {
		return fmt.Errorf("mark contact verified: %w", err)
	}

	return nil
}

func (s *ContactService) resolveContact(ctx context.Context, userID string, channel domain.Channel) (*domain.User, domain.Contact, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Contact{}, ErrUserNotFound
		}
		return nil, domain.Contact{}, fmt.Errorf("load account: %w", err)
	}

	switch channel {
	case domain.ChannelEmail:
		if user.Email == nil {
			return nil, domain.Contact{}, ErrContactMissing
		}
		return user, domain.EmailContact(*user.Email), nil
	case domain.ChannelPhone:
		if user.Phone == nil {
			return nil, domain.Contact{}, ErrContactMissing
		}
		return user, domain.PhoneContact(*user.Phone), nil
	default:
		return nil, domain.Contact{}, domain.ErrInvalidContact
	}
}
