package port

import (
	"context"
	"time"
)

// RateLimitStore records timestamped attempts per identifier so callers
// can enforce a sliding window. Implementations are expected to keep
// attempts ordered by time; reference marks "now" for window math so
// tests can pin the clock.
type RateLimitStore interface {
	// TrimWindow drops attempts older than reference minus window.
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error

	// CountAttempts reports how many attempts fall inside the window.
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)

	// RecordAttempt appends an attempt at the given instant.
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error

	// OldestAttempt returns the earliest attempt still inside the
	// window, with false when the window is empty.
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}
