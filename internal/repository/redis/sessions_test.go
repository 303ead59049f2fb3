package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionRepository(client, "reg_session", 30*time.Minute)

	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return fixed })

	ctx := context.Background()
	session := domain.RegistrationSession{
		SessionID: "sess-1",
		Contact:   domain.EmailContact("person@example.com"),
		Step:      domain.RegistrationStepInitiated,
		CreatedAt: fixed,
	}

	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	stored, err := repo.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.SessionID != "sess-1" {
		t.Fatalf("expected session sess-1, got %s", stored.SessionID)
	}
	if stored.Contact != session.Contact {
		t.Fatalf("expected contact to round-trip, got %+v", stored.Contact)
	}
	if stored.Step != domain.RegistrationStepInitiated {
		t.Fatalf("expected step initiated, got %s", stored.Step)
	}
	if !stored.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected updated_at %v, got %v", fixed, stored.UpdatedAt)
	}

	ttl := server.TTL("reg_session:sess-1")
	if ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("expected ttl within (0, 30m], got %v", ttl)
	}
}

func TestSessionRepository_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "reg_session", 30*time.Minute)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_UpdateRefreshesTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionRepository(client, "reg_session", 30*time.Minute)

	ctx := context.Background()
	session := domain.RegistrationSession{
		SessionID: "sess-2",
		Contact:   domain.PhoneContact("+15550001111"),
		Step:      domain.RegistrationStepInitiated,
	}

	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Let most of the window elapse, then write again.
	server.FastForward(25 * time.Minute)

	session.Step = domain.RegistrationStepVerified
	session.Verified = true
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	ttl := server.TTL("reg_session:sess-2")
	if ttl <= 25*time.Minute {
		t.Fatalf("expected the write to refresh the ttl, got %v", ttl)
	}

	stored, err := repo.Get(ctx, "sess-2")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Step != domain.RegistrationStepVerified || !stored.Verified {
		t.Fatalf("expected verified session, got %+v", stored)
	}
}

func TestSessionRepository_UpdateMissingSession(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "reg_session", 30*time.Minute)

	session := domain.RegistrationSession{
		SessionID: "ghost",
		Contact:   domain.EmailContact("person@example.com"),
	}

	if err := repo.Update(context.Background(), session); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_ExpiryEvictsSession(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionRepository(client, "reg_session", 10*time.Minute)

	ctx := context.Background()
	session := domain.RegistrationSession{
		SessionID: "sess-3",
		Contact:   domain.EmailContact("person@example.com"),
		Step:      domain.RegistrationStepInitiated,
	}

	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	server.FastForward(11 * time.Minute)

	if _, err := repo.Get(ctx, "sess-3"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "reg_session", 30*time.Minute)

	ctx := context.Background()
	session := domain.RegistrationSession{
		SessionID: "sess-4",
		Contact:   domain.EmailContact("person@example.com"),
	}

	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := repo.Delete(ctx, "sess-4"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(ctx, "sess-4"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
