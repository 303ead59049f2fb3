package domain

import (
	"errors"
	"time"
)

// Purpose enumerates the business reason a verification code was issued.
type Purpose string

const (
	PurposeRegistration      Purpose = "registration"
	PurposePasswordReset     Purpose = "password_reset"
	PurposeEmailVerification Purpose = "email_verification"
	PurposeChangeEmail       Purpose = "change_email"
	PurposeChangePhone       Purpose = "change_phone"
)

// Channel enumerates the delivery medium for a verification code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// ErrInvalidContact indicates a contact with an unknown channel or empty value.
var ErrInvalidContact = errors.New("contact must carry exactly one email or phone value")

// Contact identifies where a code is delivered. The channel tag states which
// kind of address Value holds, so "exactly one populated" is structural
// rather than a pair of nullable columns.
type Contact struct {
	Channel Channel
	Value   string
}

// EmailContact builds an email contact.
func EmailContact(address string) Contact {
	return Contact{Channel: ChannelEmail, Value: address}
}

// PhoneContact builds a phone contact.
func PhoneContact(number string) Contact {
	return Contact{Channel: ChannelPhone, Value: number}
}

// Validate reports whether the contact is well formed.
func (c Contact) Validate() error {
	if c.Value == "" {
		return ErrInvalidContact
	}
	switch c.Channel {
	case ChannelEmail, ChannelPhone:
		return nil
	default:
		return ErrInvalidContact
	}
}

// Email returns the email address when the contact is an email contact.
func (c Contact) Email() *string {
	if c.Channel == ChannelEmail && c.Value != "" {
		v := c.Value
		return &v
	}
	return nil
}

// Phone returns the phone number when the contact is a phone contact.
func (c Contact) Phone() *string {
	if c.Channel == ChannelPhone && c.Value != "" {
		v := c.Value
		return &v
	}
	return nil
}

// VerificationCode mirrors the persisted representation in the
// verification_codes table.
type VerificationCode struct {
	ID           uint64
	Contact      Contact
	Code         string
	Purpose      Purpose
	Verified     bool
	AttemptCount int
	ResetToken   *string
	TokenUsed    bool
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether the code has elapsed its validity window.
func (v VerificationCode) IsExpired(at time.Time) bool {
	return !at.Before(v.ExpiresAt)
}

// AttemptsExhausted reports whether the attempt counter reached the cap.
func (v VerificationCode) AttemptsExhausted(max int) bool {
	return max > 0 && v.AttemptCount >= max
}
