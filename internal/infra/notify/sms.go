package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/infra/config"
	"github.com/nverdi/social-app-backend/internal/infra/logger"
)

// SMSSender delivers verification codes through an HTTP SMS gateway.
type SMSSender struct {
	apiURL string
	apiKey string
	sender string
	dryRun bool
	client *http.Client
	log    *zap.Logger
}

type smsGatewayResponse struct {
	Code int `json:"code"`
	Data struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// NewSMSSender constructs an SMSSender from gateway settings.
func NewSMSSender(cfg config.SMSSettings, log *zap.Logger) *SMSSender {
	return &SMSSender{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		sender: cfg.Sender,
		dryRun: cfg.DryRun,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// SendCode submits the verification code to the SMS gateway. In dry-run
// mode the request is logged and skipped.
func (s *SMSSender) SendCode(ctx context.Context, contact domain.Contact, code string, purpose domain.Purpose) error {
	if s.dryRun || s.apiKey == "" {
		s.log.Info("sms dry-run",
			zap.String("to", logger.MaskPhone(contact.Value)),
			zap.String("purpose", string(purpose)),
		)
		return nil
	}

	form := url.Values{
		"apiKey":    {s.apiKey},
		"recipient": {contact.Value},
		"text":      {fmt.Sprintf("Your verification code: %s", code)},
	}
	if s.sender != "" {
		form.Set("from", s.sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sms response: %w", err)
	}

	var result smsGatewayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse sms response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("sms gateway returned error code %d", result.Code)
	}

	s.log.Info("verification sms sent",
		zap.String("to", logger.MaskPhone(contact.Value)),
		zap.String("message_id", result.Data.MessageID),
	)

	return nil
}
