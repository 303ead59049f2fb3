package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/infra/config"
	"github.com/nverdi/social-app-backend/internal/infra/logger"
)

// EmailSender delivers verification codes over SMTP.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// NewEmailSender constructs an EmailSender from SMTP settings.
func NewEmailSender(cfg config.SMTPSettings, log *zap.Logger) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

// SendCode emails the verification code to the recipient.
func (s *EmailSender) SendCode(ctx context.Context, contact domain.Contact, code string, purpose domain.Purpose) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", contact.Value)
	m.SetHeader("Subject", subjectFor(purpose))

	body := fmt.Sprintf(`
		<h3>%s</h3>
		<p>Your verification code is: <strong>%s</strong></p>
		<p>If you did not request this code, you can ignore this email.</p>
	`, subjectFor(purpose), code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	s.log.Info("verification email sent",
		zap.String("to", logger.MaskEmail(contact.Value)),
		zap.String("purpose", string(purpose)),
	)

	return nil
}

func subjectFor(purpose domain.Purpose) string {
	switch purpose {
	case domain.PurposePasswordReset:
		return "Password reset code"
	case domain.PurposeEmailVerification:
		return "Confirm your email address"
	case domain.PurposeChangeEmail, domain.PurposeChangePhone:
		return "Confirm your contact change"
	default:
		return "Your registration code"
	}
}
