package port

import (
	"context"

	"github.com/nverdi/social-app-backend/internal/core/domain"
)

// CodeNotifier delivers a generated verification code to a contact address.
// Transport details (SMTP, SMS gateway) stay behind this boundary; the
// engine only observes pass/fail.
type CodeNotifier interface {
	SendCode(ctx context.Context, contact domain.Contact, code string, purpose domain.Purpose) error
}
