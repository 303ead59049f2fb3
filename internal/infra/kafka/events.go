package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/core/port"
	"github.com/nverdi/social-app-backend/internal/infra/config"
)

const schemaVersion = "1.0"

// Event type names double as topic suffixes.
const (
	eventCodeIssued      = "verification.code_issued"
	eventCodeVerified    = "verification.code_verified"
	eventPasswordChanged = "auth.password_changed"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

var _ port.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, key string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	select {
	case p.producer.producer.Input() <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.logger.Debug("event published",
		zap.String("event_type", eventType),
		zap.String("event_id", id),
	)

	return nil
}

// PublishCodeIssued emits verification.code_issued.
func (p *EventPublisher) PublishCodeIssued(ctx context.Context, event domain.CodeIssuedEvent) error {
	payload := map[string]any{
		"purpose":        event.Purpose,
		"channel":        event.Channel,
		"masked_contact": event.MaskedContact,
		"issued_at":      event.IssuedAt,
		"expires_at":     event.ExpiresAt,
		"metadata":       event.Metadata,
	}
	return p.publish(ctx, event.EventID, eventCodeIssued, event.MaskedContact, event.IssuedAt, payload)
}

// PublishCodeVerified emits verification.code_verified.
func (p *EventPublisher) PublishCodeVerified(ctx context.Context, event domain.CodeVerifiedEvent) error {
	payload := map[string]any{
		"purpose":        event.Purpose,
		"channel":        event.Channel,
		"masked_contact": event.MaskedContact,
		"verified_at":    event.VerifiedAt,
		"attempts":       event.Attempts,
		"metadata":       event.Metadata,
	}
	return p.publish(ctx, event.EventID, eventCodeVerified, event.MaskedContact, event.VerifiedAt, payload)
}

// PublishPasswordChanged emits auth.password_changed.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":        event.UserID,
		"masked_contact": event.MaskedContact,
		"changed_at":     event.ChangedAt,
		"source":         event.Source,
		"metadata":       event.Metadata,
	}
	return p.publish(ctx, event.EventID, eventPasswordChanged, event.UserID, event.ChangedAt, payload)
}
