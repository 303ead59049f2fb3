package notify

import (
	"context"
	"fmt"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/core/port"
)

// Dispatcher routes a verification code to the sender matching the
// contact channel.
type Dispatcher struct {
	email port.CodeNotifier
	sms   port.CodeNotifier
}

var _ port.CodeNotifier = (*Dispatcher)(nil)

// NewDispatcher wires channel-specific senders into a single notifier.
func NewDispatcher(email, sms port.CodeNotifier) *Dispatcher {
	return &Dispatcher{email: email, sms: sms}
}

// SendCode delivers the code through the channel the contact names.
func (d *Dispatcher) SendCode(ctx context.Context, contact domain.Contact, code string, purpose domain.Purpose) error {
	switch contact.Channel {
	case domain.ChannelEmail:
		if d.email == nil {
			return fmt.Errorf("email delivery is not configured")
		}
		return d.email.SendCode(ctx, contact, code, purpose)
	case domain.ChannelPhone:
		if d.sms == nil {
			return fmt.Errorf("sms delivery is not configured")
		}
		return d.sms.SendCode(ctx, contact, code, purpose)
	default:
		return domain.ErrInvalidContact
	}
}
