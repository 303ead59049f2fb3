package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/transport/http/middleware"
	"github.com/nverdi/social-app-backend/internal/usecase"
)

// ContactHandler exposes contact verification endpoints for authenticated users.
type ContactHandler struct {
	contacts *usecase.ContactService
}

// NewContactHandler builds a contact handler.
func NewContactHandler(contacts *usecase.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// RegisterRoutes wires the contact endpoints into the group.
func (h *ContactHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/verification/request", h.RequestVerification)
	group.POST("/verification/confirm", h.Confirm)
}

// RequestVerification sends a confirmation code to the caller's contact.
func (h *ContactHandler) RequestVerification(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ContactVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	channel, ok := parseChannel(req.Channel)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "channel must be email or phone"))
		return
	}

	if err := h.contacts.RequestVerification(c.Request.Context(), userID, channel); err != nil {
		writeDomainError(c, err, contactErrorCases(), http.StatusInternalServerError, "failed to send verification code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// Confirm validates the submitted code and marks the contact verified.
func (h *ContactHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ContactConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid confirm payload"))
		return
	}

	channel, ok := parseChannel(req.Channel)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "channel must be email or phone"))
		return
	}

	if err := h.contacts.Confirm(c.Request.Context(), userID, channel, req.Code); err != nil {
		writeDomainError(c, err, contactErrorCases(), http.StatusInternalServerError, "failed to confirm contact")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "contact verified"})
}

func parseChannel(raw string) (domain.Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(domain.ChannelEmail):
		return domain.ChannelEmail, true
	case string(domain.ChannelPhone):
		return domain.ChannelPhone, true
	default:
		return "", false
	}
}

func contactErrorCases() []errorCase {
	return []errorCase{
		{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		{Err: usecase.ErrContactMissing, Status: http.StatusBadRequest, Message: "no contact on record for channel"},
		{Err: usecase.ErrContactAlreadyVerified, Status: http.StatusConflict, Message: "contact already verified"},
		{Err: usecase.ErrCodeNotFound, Status: http.StatusNotFound, Message: "verification code not found"},
		{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many verification attempts"},
		{Err: usecase.ErrInvalidCode, Status: http.StatusBadRequest, Message: "invalid verification code"},
		{Err: usecase.ErrCodeExpired, Status: http.StatusGone, Message: "verification code expired"},
		{Err: usecase.ErrDeliveryFailed, Status: http.StatusBadGateway, Message: "could not deliver verification code"},
	}
}
