package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/infra/config"
)

// capturedProducer satisfies sarama.AsyncProducer and buffers the
// messages the publisher hands it.
type capturedProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newCapturedProducer() *capturedProducer {
	return &capturedProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *capturedProducer) AsyncClose() {}

func (f *capturedProducer) Close() error { return nil }

func (f *capturedProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *capturedProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *capturedProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *capturedProducer) IsTransactional() bool { return false }

func (f *capturedProducer) BeginTxn() error { return nil }

func (f *capturedProducer) CommitTxn() error { return nil }

func (f *capturedProducer) AbortTxn() error { return nil }

func (f *capturedProducer) TxnStatus() sarama.ProducerTxnStatusFlag { return 0 }

func (f *capturedProducer) AddOffsetsToTxn(map[string][]*sarama.PartitionOffsetMetadata, string) error {
	return nil
}

func (f *capturedProducer) AddMessageToTxn(*sarama.ConsumerMessage, string, *string) error {
	return nil
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "social"},
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}
	return NewEventPublisher(producer, config.AppSettings{
		Name: "social-app-backend",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

// takeEnvelope pulls the single published message off the fake producer
// and decodes its JSON envelope.
func takeEnvelope(t *testing.T, fake *capturedProducer, wantTopic string) (map[string]any, *sarama.ProducerMessage) {
	t.Helper()

	var msg *sarama.ProducerMessage
	select {
	case msg = <-fake.input:
	default:
		t.Fatal("expected a message on the producer input channel")
	}

	if msg.Topic != wantTopic {
		t.Fatalf("topic = %s, want %s", msg.Topic, wantTopic)
	}

	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode message value: %v", err)
	}
	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope, msg
}

func payloadOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	payload, ok := envelope["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload is %T, want object", envelope["payload"])
	}
	return payload
}

func TestPublishCodeIssued(t *testing.T) {
	fake := newCapturedProducer()
	publisher := newTestPublisher(t, fake)

	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	event := domain.CodeIssuedEvent{
		EventID:       "event-123",
		Purpose:       domain.PurposeRegistration,
		Channel:       domain.ChannelEmail,
		MaskedContact: "p***n@example.com",
		IssuedAt:      issuedAt,
		ExpiresAt:     issuedAt.Add(30 * time.Minute),
	}

	if err := publisher.PublishCodeIssued(context.Background(), event); err != nil {
		t.Fatalf("PublishCodeIssued: %v", err)
	}

	envelope, msg := takeEnvelope(t, fake, "social.verification.code_issued")

	if got := envelope["event_id"]; got != event.EventID {
		t.Fatalf("event_id = %v", got)
	}
	if got := envelope["event_type"]; got != "verification.code_issued" {
		t.Fatalf("event_type = %v", got)
	}
	if got := envelope["version"]; got != "1.0" {
		t.Fatalf("version = %v", got)
	}

	payload := payloadOf(t, envelope)
	if got := payload["purpose"]; got != string(domain.PurposeRegistration) {
		t.Fatalf("purpose = %v", got)
	}
	if got := payload["masked_contact"]; got != event.MaskedContact {
		t.Fatalf("masked_contact = %v", got)
	}

	metadata, ok := envelope["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("metadata is %T, want object", envelope["metadata"])
	}
	if got := metadata["service"]; got != "social-app-backend" {
		t.Fatalf("service = %v", got)
	}
	if got := metadata["environment"]; got != "test" {
		t.Fatalf("environment = %v", got)
	}

	key, err := msg.Key.Encode()
	if err != nil {
		t.Fatalf("encode message key: %v", err)
	}
	if string(key) != event.MaskedContact {
		t.Fatalf("message key = %s, want the masked contact", key)
	}
}

func TestPublishPasswordChanged(t *testing.T) {
	fake := newCapturedProducer()
	publisher := newTestPublisher(t, fake)

	changedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	event := domain.PasswordChangedEvent{
		EventID:       "event-456",
		UserID:        "user-1",
		MaskedContact: "p***n@example.com",
		ChangedAt:     changedAt,
		Source:        "password_reset",
	}

	if err := publisher.PublishPasswordChanged(context.Background(), event); err != nil {
		t.Fatalf("PublishPasswordChanged: %v", err)
	}

	envelope, _ := takeEnvelope(t, fake, "social.auth.password_changed")

	payload := payloadOf(t, envelope)
	if got := payload["user_id"]; got != event.UserID {
		t.Fatalf("user_id = %v", got)
	}
	if got := payload["source"]; got != event.Source {
		t.Fatalf("source = %v", got)
	}

	timestamp, ok := envelope["timestamp"].(string)
	if !ok {
		t.Fatalf("timestamp is %T, want string", envelope["timestamp"])
	}
	parsed, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	if !parsed.Equal(changedAt) {
		t.Fatalf("timestamp = %s, want %s", timestamp, changedAt)
	}
}

func TestTopicNamePrefixing(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "social"}}

	if got := producer.TopicName("verification.code_issued"); got != "social.verification.code_issued" {
		t.Fatalf("prefixed topic = %s", got)
	}
	if got := producer.TopicName("social.verification.code_issued"); got != "social.verification.code_issued" {
		t.Fatalf("prefixing should be idempotent, got %s", got)
	}

	bare := &Producer{}
	if got := bare.TopicName("verification.code_issued"); got != "verification.code_issued" {
		t.Fatalf("unprefixed topic = %s", got)
	}
}
