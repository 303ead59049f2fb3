package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitStore is the attempt-tracking surface the limiter needs. The
// Redis sliding-window repository satisfies it.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}

// IdentifierFunc derives the key a request is throttled under. Returning
// false skips the limit for that request.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule is one sliding-window limit bound to an endpoint.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter builds throttling middleware on top of a RateLimitStore.
// Store errors fail open: an unreachable Redis must not lock users out.
type RateLimiter struct {
	store  RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

func NewRateLimiter(store RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock swaps the time source, for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier throttles by the caller's IP address.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// rateLimitedResponse is the 429 body. trace_id lets support correlate a
// complaint with the log line.
type rateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// RateLimit enforces the rule on every request passing through it. Each
// attempt is checked against the cap before it is recorded, so a blocked
// request does not extend its own lockout.
func (rl *RateLimiter) RateLimit(rule RateLimitRule) gin.HandlerFunc {
	usable := rl.store != nil && rule.Identifier != nil && rule.Limit > 0 && rule.Window > 0
	if rule.Name == "" {
		rule.Name = "default"
	}

	return func(c *gin.Context) {
		if !usable {
			c.Next()
			return
		}

		identifier, ok := rule.Identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		now := rl.now()
		key := rule.Name + ":" + identifier

		count, resetAt, err := rl.usage(c.Request.Context(), key, rule, now)
		if err != nil {
			rl.logger.Warn("rate limit check failed",
				zap.String("rule", rule.Name),
				zap.String("identifier", identifier),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count >= rule.Limit {
			rl.reject(c, rule, resetAt.Sub(now), resetAt)
			return
		}

		if err := rl.store.RecordAttempt(c.Request.Context(), key, now); err != nil {
			rl.logger.Warn("rate limit record failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		remaining := rule.Limit - count - 1
		if remaining < 0 {
			remaining = 0
		}
		rl.writeHeaders(c, rule.Limit, remaining, resetAt)
		c.Next()
	}
}

// usage trims the window, then reports the current attempt count and the
// instant the window reopens (when the oldest tracked attempt ages out).
func (rl *RateLimiter) usage(ctx context.Context, key string, rule RateLimitRule, now time.Time) (int, time.Time, error) {
	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return 0, time.Time{}, err
	}

	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return 0, time.Time{}, err
	}

	resetAt := now.Add(rule.Window)
	if oldest, found, err := rl.store.OldestAttempt(ctx, key, rule.Window, now); err != nil {
		return 0, time.Time{}, err
	} else if found {
		resetAt = oldest.Add(rule.Window)
	}

	return count, resetAt, nil
}

func (rl *RateLimiter) writeHeaders(c *gin.Context, limit, remaining int, resetAt time.Time) {
	h := c.Writer.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

func (rl *RateLimiter) reject(c *gin.Context, rule RateLimitRule, retryAfter time.Duration, resetAt time.Time) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 0 {
		seconds = 0
	}

	rl.writeHeaders(c, rule.Limit, 0, resetAt)
	c.Writer.Header().Set("Retry-After", strconv.Itoa(seconds))

	c.AbortWithStatusJSON(http.StatusTooManyRequests, rateLimitedResponse{
		Error:      fmt.Sprintf("too many requests, try again in %d seconds", seconds),
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}
