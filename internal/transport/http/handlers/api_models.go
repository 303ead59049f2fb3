package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nverdi/social-app-backend/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness state.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID            string  `json:"id"`
	FullName      string  `json:"full_name"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Role          string  `json:"role"`
	EmailVerified bool    `json:"email_verified"`
	PhoneVerified bool    `json:"phone_verified"`
}

func newUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:            user.ID,
		FullName:      user.FullName,
		Email:         user.Email,
		Phone:         user.Phone,
		Role:          string(user.Role),
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
	}
}

// contactFromFields resolves an email/phone pair to a domain contact. Email
// wins when both are present.
func contactFromFields(email, phone string) (domain.Contact, bool) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	switch {
	case email != "":
		return domain.EmailContact(email), true
	case phone != "":
		return domain.PhoneContact(phone), true
	default:
		return domain.Contact{}, false
	}
}

// RegistrationInitiateRequest starts a registration session.
type RegistrationInitiateRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// RegistrationSessionResponse returns the session handle driving the flow.
type RegistrationSessionResponse struct {
	SessionID string `json:"session_id"`
	Step      string `json:"step"`
}

// RegistrationResendRequest re-sends the pending code for a session.
type RegistrationResendRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// RegistrationVerifyRequest submits the received code for a session.
type RegistrationVerifyRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

// RegistrationCompleteRequest finishes registration with profile and credential.
type RegistrationCompleteRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	FullName  string `json:"full_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserSummary `json:"user"`
}

// PasswordResetRequest asks for a reset code to be delivered.
type PasswordResetRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PasswordResetVerifyRequest submits the reset code for the contact.
type PasswordResetVerifyRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Code  string `json:"code" binding:"required"`
}

// PasswordResetVerifyResponse carries the single-use token for the final step.
type PasswordResetVerifyResponse struct {
	ResetToken string `json:"reset_token"`
}

// PasswordResetConfirmRequest rotates the credential behind a valid reset token.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ResetToken  string `json:"reset_token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ContactVerificationRequest asks for a confirmation code on a channel.
type ContactVerificationRequest struct {
	Channel string `json:"channel" binding:"required"`
}

// ContactConfirmRequest submits the confirmation code for a channel.
type ContactConfirmRequest struct {
	Channel string `json:"channel" binding:"required"`
	Code    string `json:"code" binding:"required"`
}

// BannerRequest creates or updates a banner.
type BannerRequest struct {
	Title        string  `json:"title" binding:"required"`
	ImageURL     string  `json:"image_url" binding:"required"`
	LinkURL      *string `json:"link_url"`
	DisplayOrder int     `json:"display_order"`
	Active       bool    `json:"active"`
}

// BannerResponse is the API view of a banner.
type BannerResponse struct {
	ID           uint64  `json:"id"`
	Title        string  `json:"title"`
	ImageURL     string  `json:"image_url"`
	LinkURL      *string `json:"link_url,omitempty"`
	DisplayOrder int     `json:"display_order"`
	Active       bool    `json:"active"`
}

func newBannerResponse(b domain.Banner) BannerResponse {
	return BannerResponse{
		ID:           b.ID,
		Title:        b.Title,
		ImageURL:     b.ImageURL,
		LinkURL:      b.LinkURL,
		DisplayOrder: b.DisplayOrder,
		Active:       b.Active,
	}
}

// FAQRequest creates or updates an FAQ entry.
type FAQRequest struct {
	Question     string `json:"question" binding:"required"`
	Answer       string `json:"answer" binding:"required"`
	Category     string `json:"category"`
	DisplayOrder int    `json:"display_order"`
	Active       bool   `json:"active"`
}

// FAQResponse is the API view of an FAQ entry.
type FAQResponse struct {
	ID           uint64 `json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Category     string `json:"category,omitempty"`
	DisplayOrder int    `json:"display_order"`
	Active       bool   `json:"active"`
}

func newFAQResponse(f domain.FAQ) FAQResponse {
	return FAQResponse{
		ID:           f.ID,
		Question:     f.Question,
		Answer:       f.Answer,
		Category:     f.Category,
		DisplayOrder: f.DisplayOrder,
		Active:       f.Active,
	}
}
