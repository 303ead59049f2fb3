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

const loginRateLimitPrefix = "login"

var (
	// ErrInvalidCredentials indicates the contact/password pair does not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRevoked indicates the access token was revoked before its natural expiry.
	ErrTokenRevoked = errors.New("token revoked")
)

// AuthService handles credential login, token validation, and logout.
type AuthService struct {
	users       port.UserRepository
	tokens      *security.TokenManager
	denylist    port.TokenDenylist
	rateLimiter port.RateLimitStore
	log         *zap.Logger
	rateWindow  time.Duration
	rateMax     int
	now         func() time.Time
}

// NewAuthService constructs an auth service.
func NewAuthService(
	users port.UserRepository,
	tokens *security.TokenManager,
	denylist port.TokenDenylist,
	rateLimiter port.RateLimitStore,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		denylist:    denylist,
		rateLimiter: rateLimiter,
		log:         log,
		rateWindow:  time.Hour,
		rateMax:     10,
		now:         time.Now,
	}
}

// WithClock overrides the time source.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// WithRateLimit overrides the login attempt budget.
func (s *AuthService) WithRateLimit(window time.Duration, max int) *AuthService {
	if window > 0 {
		s.rateWindow = window
	}
	if max > 0 {
		s.rateMax = max
	}
	return s
}

// Login verifies the contact/password pair and issues an access token.
func (s *AuthService) Login(ctx context.Context, contact domain.Contact, password string) (string, *domain.User, error) {
	if err := contact.Validate(); err != nil {
		return "", nil, err
	}

	if err := s.checkRateLimit(ctx, contact); err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a hash comparison so unknown contacts cost the same.
			_, _ = security.VerifyPassword(password, "AAAA:AAAA")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load account: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	userID, err := parseUserID(user.ID)
	if err != nil {
		return "", nil, err
	}

	token, jti, err := s.tokens.Issue(userID, string(user.Role))
	if err != nil {
		return "", nil, err
	}

	s.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("jti", jti),
		zap.String("contact", logger.MaskContact(contact.Value)),
	)

	return token, user, nil
}

// Authenticate parses an access token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*security.AccessClaims, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// Logout revokes the access token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		// An expired token needs no denylist entry.
		if errors.Is(err, security.ErrTokenExpired) {
			return nil
		}
		return err
	}

	remaining := s.tokens.RemainingLifetime(claims)
	if remaining <= 0 {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, "logout", remaining); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.log.Info("user logged out",
		zap.String("user_id", claims.Subject),
		zap.String("jti", claims.ID),
	)

	return nil
}

func parseUserID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user id: %w", err)
	}
	return parsed, nil
}

func (s *AuthService) checkRateLimit(ctx context.Context, contact domain.Contact) error {
	if s.rateLimiter == nil {
		return nil
	}

	identifier := fmt.Sprintf("%s:%s", loginRateLimitPrefix, contact.Value)
	now := s.now().UTC()

	if err := s.rateLimiter.TrimWindow(ctx, identifier, s.rateWindow, now); err != nil {
		return fmt.Errorf("trim rate limit window: %w", err)
	}

	count, err := s.rateLimiter.CountAttempts(ctx, identifier, s.rateWindow, now)
	if err != nil {
		return fmt.Errorf("count login attempts: %w", err)
	}
	if count >= s.rateMax {
		return ErrRateLimited
	}

	if err := s.rateLimiter.RecordAttempt(ctx, identifier, now); err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}

	return nil
}
