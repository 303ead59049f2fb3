package security

import (
	"errors"
	"testing"
	"time"

	uuid "github.com/google/uuid"
)

func TestTokenManagerIssueAndParse(t *testing.T) {
	manager, err := NewTokenManager("test-signing-secret", "social-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	manager.WithClock(func() time.Time { return fixed })

	userID := uuid.New()
	token, jti, err := manager.Issue(userID, "user")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if jti == "" {
		t.Fatalf("expected a jti")
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.ID != jti {
		t.Fatalf("expected jti %s, got %s", jti, claims.ID)
	}
	if claims.Role != "user" {
		t.Fatalf("expected role user, got %s", claims.Role)
	}
	if !claims.ExpiresAt.Time.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", fixed.Add(time.Hour), claims.ExpiresAt.Time)
	}
}

func TestTokenManagerParseExpired(t *testing.T) {
	manager, err := NewTokenManager("test-signing-secret", "social-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	manager.WithClock(func() time.Time { return issued })

	token, _, err := manager.Issue(uuid.New(), "user")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	manager.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })

	if _, err := manager.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenManagerParseWrongSecret(t *testing.T) {
	issuing, err := NewTokenManager("secret-one", "social-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	verifying, err := NewTokenManager("secret-two", "social-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	token, _, err := issuing.Issue(uuid.New(), "user")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifying.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenManagerParseWrongIssuer(t *testing.T) {
	issuing, err := NewTokenManager("test-signing-secret", "someone-else", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	verifying, err := NewTokenManager("test-signing-secret", "social-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	token, _, err := issuing.Issue(uuid.New(), "user")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifying.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", "social-app", time.Hour); err == nil {
		t.Fatalf("expected an error for an empty secret")
	}
}

func TestTokenManagerRemainingLifetime(t *testing.T) {
	manager, err := NewTokenManager("test-signing-secret", "social-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	manager.WithClock(func() time.Time { return issued })

	token, _, err := manager.Issue(uuid.New(), "user")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	manager.WithClock(func() time.Time { return issued.Add(40 * time.Minute) })
	if remaining := manager.RemainingLifetime(claims); remaining != 20*time.Minute {
		t.Fatalf("expected 20m remaining, got %v", remaining)
	}

	manager.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	if remaining := manager.RemainingLifetime(claims); remaining != 0 {
		t.Fatalf("expected zero remaining after expiry, got %v", remaining)
	}

	if remaining := manager.RemainingLifetime(nil); remaining != 0 {
		t.Fatalf("expected zero remaining for nil claims, got %v", remaining)
	}
}
