package domain

import "time"

// CodeIssuedEvent represents the payload for verification.code_issued messages.
type CodeIssuedEvent struct {
	EventID       string
	Purpose       Purpose
	Channel       Channel
	MaskedContact string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Metadata      map[string]any
}

// CodeVerifiedEvent represents the payload for verification.code_verified messages.
type CodeVerifiedEvent struct {
	EventID       string
	Purpose       Purpose
	Channel       Channel
	MaskedContact string
	VerifiedAt    time.Time
	Attempts      int
	Metadata      map[string]any
}

// PasswordChangedEvent represents the payload for auth.password_changed messages.
type PasswordChangedEvent struct {
	EventID       string
	UserID        string
	MaskedContact string
	ChangedAt     time.Time
	Source        string
	Metadata      map[string]any
}
