package domain

import "time"

// UserRole enumerates the authorization tiers known to the backend.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID            string
	FullName      string
	Email         *string
	Phone         *string
	PasswordHash  string
	PasswordAlgo  string
	Role          UserRole
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ContactVerified reports whether the contact matching the given channel has
// been verified for this account.
func (u User) ContactVerified(channel Channel) bool {
	switch channel {
	case ChannelEmail:
		return u.EmailVerified
	case ChannelPhone:
		return u.PhoneVerified
	default:
		return false
	}
}
