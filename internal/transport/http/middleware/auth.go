package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nverdi/social-app-backend/internal/infra/security"
	"github.com/nverdi/social-app-backend/internal/usecase"
)

// RoleKey is the gin context key for the authenticated user's role.
const RoleKey = "role"

// authFailure mirrors the handlers' error envelope so unauthenticated
// responses look the same as handler responses.
type authFailure struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func abortAuth(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, authFailure{Error: msg, TraceID: GetTraceID(c)})
}

// RequireAuth parses the Bearer token, runs it through the auth service
// (signature, expiry and revocation checks) and stores the claims on
// the request context.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortAuth(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortAuth(c, http.StatusUnauthorized, "invalid authorization format: expected 'Bearer <token>'")
			return
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			abortAuth(c, http.StatusUnauthorized, "missing access token")
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, security.ErrTokenExpired):
			abortAuth(c, http.StatusUnauthorized, "access token expired")
			return
		case errors.Is(err, security.ErrTokenInvalid):
			abortAuth(c, http.StatusUnauthorized, "invalid access token")
			return
		case errors.Is(err, usecase.ErrTokenRevoked):
			abortAuth(c, http.StatusUnauthorized, "access token revoked")
			return
		default:
			abortAuth(c, http.StatusInternalServerError, "authentication failed")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set("claims", claims)
		c.Set(RoleKey, claims.Role)
		GetRequestContext(c).UserID = claims.Subject

		c.Next()
	}
}

// RequireRole gates a route to the listed roles; it must run after
// RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get(RoleKey)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "authentication required")
			return
		}
		role, ok := roleVal.(string)
		if !ok {
			abortAuth(c, http.StatusInternalServerError, "invalid role format")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortAuth(c, http.StatusForbidden, "insufficient permissions")
	}
}

// GetAuthenticatedUserID reads the subject stored by RequireAuth.
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
