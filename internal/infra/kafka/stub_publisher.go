package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

var _ port.EventPublisher = (*StubPublisher)(nil)

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishCodeIssued logs verification.code_issued events.
func (p *StubPublisher) PublishCodeIssued(_ context.Context, event domain.CodeIssuedEvent) error {
	payload := map[string]any{
		"purpose":        event.Purpose,
		"channel":        event.Channel,
		"masked_contact": event.MaskedContact,
		"expires_at":     event.ExpiresAt,
		"metadata":       event.Metadata,
	}
	p.logEvent(eventCodeIssued, event.IssuedAt, payload)
	return nil
}

// PublishCodeVerified logs verification.code_verified events.
func (p *StubPublisher) PublishCodeVerified(_ context.Context, event domain.CodeVerifiedEvent) error {
	payload := map[string]any{
		"purpose":        event.Purpose,
		"channel":        event.Channel,
		"masked_contact": event.MaskedContact,
		"attempts":       event.Attempts,
		"metadata":       event.Metadata,
	}
	p.logEvent(eventCodeVerified, event.VerifiedAt, payload)
	return nil
}

// PublishPasswordChanged logs auth.password_changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":        event.UserID,
		"masked_contact": event.MaskedContact,
		"source":         event.Source,
		"metadata":       event.Metadata,
	}
	p.logEvent(eventPasswordChanged, event.ChangedAt, payload)
	return nil
}
