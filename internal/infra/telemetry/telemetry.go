package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nverdi/social-app-backend/internal/infra/config"
)

// Provider holds the Prometheus metric handles for the service.
type Provider struct {
	codesIssued    *prometheus.CounterVec
	codesValidated *prometheus.CounterVec
}

// Attach registers the service metrics and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	codesIssued := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social",
		Name:      "verification_codes_issued_total",
		Help:      "Verification codes issued, partitioned by purpose and channel",
	}, []string{"purpose", "channel"})

	codesValidated := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social",
		Name:      "verification_codes_validated_total",
		Help:      "Verification code validation attempts, partitioned by purpose and outcome",
	}, []string{"purpose", "outcome"})

	return &Provider{
		codesIssued:    codesIssued,
		codesValidated: codesValidated,
	}, nil
}

// CodeIssued records an issued verification code.
func (p *Provider) CodeIssued(purpose, channel string) {
	if p == nil {
		return
	}
	p.codesIssued.WithLabelValues(purpose, channel).Inc()
}

// CodeValidated records the outcome of a code validation attempt.
func (p *Provider) CodeValidated(purpose, outcome string) {
	if p == nil {
		return
	}
	p.codesValidated.WithLabelValues(purpose, outcome).Inc()
}
