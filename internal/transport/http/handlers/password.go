package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nverdi/social-app-backend/internal/usecase"
)

// PasswordHandler exposes the credential reset endpoints.
type PasswordHandler struct {
	reset *usecase.PasswordResetService
}

// NewPasswordHandler builds a password handler.
func NewPasswordHandler(reset *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

// RegisterRoutes wires the reset endpoints into the group.
func (h *PasswordHandler) RegisterRoutes(group *gin.RouterGroup, requestMiddlewares ...gin.HandlerFunc) {
	requestHandlers := append([]gin.HandlerFunc{}, requestMiddlewares...)
	requestHandlers = append(requestHandlers, h.RequestReset)
	group.POST("/request", requestHandlers...)
	group.POST("/verify", h.VerifyReset)
	group.POST("/confirm", h.ConfirmReset)
}

// RequestReset sends a reset code when the contact belongs to an account.
// The response never reveals whether the account exists.
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	contact, ok := contactFromFields(req.Email, req.Phone)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email or phone is required"))
		return
	}

	if err := h.reset.RequestCode(c.Request.Context(), contact); err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "too many reset requests"},
			{Err: usecase.ErrDeliveryFailed, Status: http.StatusBadGateway, Message: "could not deliver reset code"},
		}, http.StatusInternalServerError, "failed to process reset request")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "if the contact is registered, a reset code has been sent"})
}

// VerifyReset validates the reset code and returns the single-use token.
func (h *PasswordHandler) VerifyReset(c *gin.Context) {
	var req PasswordResetVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verify payload"))
		return
	}

	contact, ok := contactFromFields(req.Email, req.Phone)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email or phone is required"))
		return
	}

	token, err := h.reset.VerifyCode(c.Request.Context(), contact, req.Code)
	if err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrCodeNotFound, Status: http.StatusNotFound, Message: "verification code not found"},
			{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many verification attempts"},
			{Err: usecase.ErrInvalidCode, Status: http.StatusBadRequest, Message: "invalid verification code"},
			{Err: usecase.ErrCodeExpired, Status: http.StatusGone, Message: "verification code expired"},
		}, http.StatusInternalServerError, "failed to verify reset code")
		return
	}

	c.JSON(http.StatusOK, PasswordResetVerifyResponse{ResetToken: token})
}

// ConfirmReset updates the credential behind a valid reset token.
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid confirm payload"))
		return
	}

	contact, ok := contactFromFields(req.Email, req.Phone)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email or phone is required"))
		return
	}

	err := h.reset.ResetPassword(c.Request.Context(), contact, req.ResetToken, req.NewPassword)
	if err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrInvalidResetToken, Status: http.StatusUnauthorized, Message: "invalid or expired reset token"},
			{Err: usecase.ErrResetTokenUsed, Status: http.StatusConflict, Message: "reset token already used"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
