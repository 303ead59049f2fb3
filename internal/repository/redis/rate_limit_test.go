package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitRepository_SlidingWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rate-limit", TTL: 2 * time.Hour})

	ctx := context.Background()
	window := time.Hour
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// Two attempts inside the window, one long before it.
	stale := now.Add(-2 * time.Hour)
	for _, at := range []time.Time{stale, now.Add(-30 * time.Minute), now.Add(-5 * time.Minute)} {
		if err := repo.RecordAttempt(ctx, "login:person@example.com", at); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "login:person@example.com", window, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two attempts in the window, got %d", count)
	}

	if err := repo.TrimWindow(ctx, "login:person@example.com", window, now); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	oldest, ok, err := repo.OldestAttempt(ctx, "login:person@example.com", window, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a remaining attempt")
	}
	if !oldest.Equal(now.Add(-30 * time.Minute)) {
		t.Fatalf("expected the stale attempt to be trimmed, oldest is %v", oldest)
	}
}

func TestRateLimitRepository_EmptyWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rate-limit"})

	ctx := context.Background()
	now := time.Now().UTC()

	count, err := repo.CountAttempts(ctx, "login:nobody", time.Hour, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero attempts, got %d", count)
	}

	_, ok, err := repo.OldestAttempt(ctx, "login:nobody", time.Hour, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected no attempt for an untouched key")
	}
}

func TestRateLimitRepository_RejectsNonPositiveWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{})

	if _, err := repo.CountAttempts(context.Background(), "id", 0, time.Now()); err == nil {
		t.Fatalf("expected error for non-positive window")
	}
	if err := repo.TrimWindow(context.Background(), "id", 0, time.Now()); err == nil {
		t.Fatalf("expected error for non-positive window")
	}
}
