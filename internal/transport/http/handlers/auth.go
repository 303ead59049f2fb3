package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nverdi/social-app-backend/internal/usecase"
)

// AuthHandler exposes login and logout endpoints.
type AuthHandler struct {
	auth           *usecase.AuthService
	accessTokenTTL time.Duration
}

// NewAuthHandler builds an auth handler.
func NewAuthHandler(auth *usecase.AuthService, accessTokenTTL time.Duration) *AuthHandler {
	if accessTokenTTL <= 0 {
		accessTokenTTL = 24 * time.Hour
	}
	return &AuthHandler{auth: auth, accessTokenTTL: accessTokenTTL}
}

// RegisterRoutes wires the auth endpoints into the group.
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	loginHandlers := append([]gin.HandlerFunc{}, loginMiddlewares...)
	loginHandlers = append(loginHandlers, h.Login)
	group.POST("/login", loginHandlers...)
	group.POST("/logout", h.Logout)
}

// Login authenticates a contact/password pair and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	contact, ok := contactFromFields(req.Email, req.Phone)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email or phone is required"))
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), contact, req.Password)
	if err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "too many login attempts"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, AuthLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.accessTokenTTL.Seconds()),
		User:        newUserSummary(user),
	})
}

// Logout revokes the presented access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), strings.TrimSpace(parts[1])); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}
