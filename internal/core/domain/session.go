package domain

import "time"

// RegistrationStep enumerates the stages of the multi-step registration flow.
type RegistrationStep string

const (
	RegistrationStepInitiated RegistrationStep = "initiated"
	RegistrationStepVerified  RegistrationStep = "verified"
	RegistrationStepCompleted RegistrationStep = "completed"
)

// RegistrationSession is the ephemeral cache-backed state threading the
// initiate -> verify -> complete registration flow. The cache TTL is the
// authoritative timeout; there is no separate expiry field.
type RegistrationSession struct {
	SessionID string           `json:"session_id"`
	Contact   Contact          `json:"contact"`
	Step      RegistrationStep `json:"step"`
	Verified  bool             `json:"verified"`
	FullName  string           `json:"full_name,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
