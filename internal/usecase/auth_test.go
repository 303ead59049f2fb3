package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/infra/security"
)

func newTestTokenManager(t *testing.T) *security.TokenManager {
	t.Helper()

	manager, err := security.NewTokenManager("test-signing-secret", "social-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	return manager
}

func newAuthFixture(t *testing.T, users *userRepoStub) (*AuthService, *security.TokenManager, *denylistStub) {
	t.Helper()

	tokens := newTestTokenManager(t)
	denylist := newDenylistStub()
	svc := NewAuthService(users, tokens, denylist, &rateLimitStub{}, nil)
	return svc, tokens, denylist
}

func TestAuthServiceLogin(t *testing.T) {
	hash, err := security.HashPassword("h7#Vq2pXm!9w")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	userID := "2f0c8a4e-62ce-4be0-b188-3f1b4ea2a0c1"
	users := &userRepoStub{byContact: map[string]domain.User{
		"person@example.com": {ID: userID, PasswordHash: hash, Role: domain.RoleUser},
	}}
	svc, tokens, _ := newAuthFixture(t, users)

	token, user, err := svc.Login(context.Background(), domain.EmailContact("person@example.com"), "h7#Vq2pXm!9w")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != userID {
		t.Fatalf("expected user %s, got %s", userID, user.ID)
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
	if claims.Subject != userID {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Role != string(domain.RoleUser) {
		t.Fatalf("expected role %s, got %s", domain.RoleUser, claims.Role)
	}
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("h7#Vq2pXm!9w")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &userRepoStub{byContact: map[string]domain.User{
		"person@example.com": {ID: "2f0c8a4e-62ce-4be0-b188-3f1b4ea2a0c1", PasswordHash: hash},
	}}
	svc, _, _ := newAuthFixture(t, users)

	_, _, err = svc.Login(context.Background(), domain.EmailContact("person@example.com"), "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthServiceLoginUnknownContact(t *testing.T) {
	svc, _, _ := newAuthFixture(t, &userRepoStub{})

	_, _, err := svc.Login(context.Background(), domain.EmailContact("nobody@example.com"), "h7#Vq2pXm!9w")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthServiceLoginRateLimited(t *testing.T) {
	tokens := newTestTokenManager(t)
	limiter := &rateLimitStub{count: 10}
	svc := NewAuthService(&userRepoStub{}, tokens, newDenylistStub(), limiter, nil)

	_, _, err := svc.Login(context.Background(), domain.EmailContact("person@example.com"), "h7#Vq2pXm!9w")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	hash, err := security.HashPassword("h7#Vq2pXm!9w")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &userRepoStub{byContact: map[string]domain.User{
		"person@example.com": {ID: "2f0c8a4e-62ce-4be0-b188-3f1b4ea2a0c1", PasswordHash: hash, Role: domain.RoleUser},
	}}
	svc, _, denylist := newAuthFixture(t, users)

	token, _, err := svc.Login(context.Background(), domain.EmailContact("person@example.com"), "h7#Vq2pXm!9w")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), token); err != nil {
		t.Fatalf("Authenticate before logout returned error: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if len(denylist.entries) != 1 {
		t.Fatalf("expected one denylist entry, got %d", len(denylist.entries))
	}
	for jti, ttl := range denylist.entries {
		if ttl <= 0 || ttl > time.Hour {
			t.Fatalf("expected denylist ttl within the token lifetime, got %v", ttl)
		}
		if denylist.reasons[jti] != "logout" {
			t.Fatalf("expected logout reason, got %s", denylist.reasons[jti])
		}
	}

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
}

func TestAuthServiceLogoutExpiredTokenIsNoop(t *testing.T) {
	tokens := newTestTokenManager(t)
	past := time.Now().Add(-2 * time.Hour)
	tokens.WithClock(func() time.Time { return past })

	users := &userRepoStub{}
	denylist := newDenylistStub()
	svc := NewAuthService(users, tokens, denylist, &rateLimitStub{}, nil)

	hash, err := security.HashPassword("h7#Vq2pXm!9w")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users.byContact = map[string]domain.User{
		"person@example.com": {ID: "2f0c8a4e-62ce-4be0-b188-3f1b4ea2a0c1", PasswordHash: hash},
	}

	token, _, err := svc.Login(context.Background(), domain.EmailContact("person@example.com"), "h7#Vq2pXm!9w")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// Restore the real clock so the hour-long token reads as expired.
	tokens.WithClock(time.Now)

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("expected expired-token logout to be a no-op, got %v", err)
	}
	if len(denylist.entries) != 0 {
		t.Fatalf("expected no denylist entry for an expired token")
	}
}

func TestAuthServiceAuthenticateGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t, &userRepoStub{})

	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	if !errors.Is(err, security.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
