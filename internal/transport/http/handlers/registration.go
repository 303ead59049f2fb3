package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nverdi/social-app-backend/internal/usecase"
)

// RegistrationHandler exposes the multi-step registration endpoints.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

// NewRegistrationHandler builds a registration handler.
func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes wires the registration endpoints into the group.
func (h *RegistrationHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/initiate", h.Initiate)
	group.POST("/resend", h.Resend)
	group.POST("/verify", h.Verify)
	group.POST("/complete", h.Complete)
}

// Initiate opens a registration session and sends the first code.
func (h *RegistrationHandler) Initiate(c *gin.Context) {
	var req RegistrationInitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	contact, ok := contactFromFields(req.Email, req.Phone)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email or phone is required"))
		return
	}

	session, err := h.registration.Initiate(c.Request.Context(), contact)
	if err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrContactTaken, Status: http.StatusConflict, Message: "contact already registered"},
			{Err: usecase.ErrDeliveryFailed, Status: http.StatusBadGateway, Message: "could not deliver verification code"},
		}, http.StatusInternalServerError, "failed to start registration")
		return
	}

	c.JSON(http.StatusCreated, RegistrationSessionResponse{
		SessionID: session.SessionID,
		Step:      string(session.Step),
	})
}

// Resend issues a fresh code for an open session.
func (h *RegistrationHandler) Resend(c *gin.Context) {
	var req RegistrationResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resend payload"))
		return
	}

	if err := h.registration.Resend(c.Request.Context(), req.SessionID); err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Message: "registration session not found"},
			{Err: usecase.ErrDeliveryFailed, Status: http.StatusBadGateway, Message: "could not deliver verification code"},
		}, http.StatusInternalServerError, "failed to resend code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// Verify checks the submitted code and advances the session.
func (h *RegistrationHandler) Verify(c *gin.Context) {
	var req RegistrationVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verify payload"))
		return
	}

	session, err := h.registration.Verify(c.Request.Context(), req.SessionID, req.Code)
	if err != nil {
		writeDomainError(c, err, verificationErrorCases(), http.StatusInternalServerError, "failed to verify code")
		return
	}

	c.JSON(http.StatusOK, RegistrationSessionResponse{
		SessionID: session.SessionID,
		Step:      string(session.Step),
	})
}

// Complete creates the account for a verified session.
func (h *RegistrationHandler) Complete(c *gin.Context) {
	var req RegistrationCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid complete payload"))
		return
	}

	user, err := h.registration.Complete(c.Request.Context(), req.SessionID, req.FullName, req.Password)
	if err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Message: "registration session not found"},
			{Err: usecase.ErrVerificationRequired, Status: http.StatusConflict, Message: "contact verification required"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to complete registration")
		return
	}

	c.JSON(http.StatusCreated, newUserSummary(user))
}

// verificationErrorCases maps the shared code-validation sentinels.
func verificationErrorCases() []errorCase {
	return []errorCase{
		{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Message: "registration session not found"},
		{Err: usecase.ErrCodeNotFound, Status: http.StatusNotFound, Message: "verification code not found"},
		{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many verification attempts"},
		{Err: usecase.ErrInvalidCode, Status: http.StatusBadRequest, Message: "invalid verification code"},
		{Err: usecase.ErrCodeExpired, Status: http.StatusGone, Message: "verification code expired"},
	}
}
