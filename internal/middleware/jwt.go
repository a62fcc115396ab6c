package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicsense/portal-gateway/internal/service"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
	"github.com/civicsense/portal-gateway/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "currentSession"

// JWT protects routes by requiring a valid access token and a live session
// behind it. Handlers read the session rather than the raw token.
func JWT(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := sessionService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		session, err := sessionService.Resolve(c.Request.Context(), claims.SessionID)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session expired"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// OptionalJWT attaches claims and session when present but does not block.
// The wizard runs under it so citizens can draft before signing in.
func OptionalJWT(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := sessionService.ValidateToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		session, err := sessionService.Resolve(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}
