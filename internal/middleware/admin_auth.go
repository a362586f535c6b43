package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/response"
)

const (
	// SessionCookie carries the admin token for browser clients
	SessionCookie = "aeroflash_session"

	adminSessionKey = "admin_session"
	bearerPrefix    = "Bearer "
)

// TokenValidator resolves a session token to its admin session
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.AdminSession, error)
}

// AdminAuth requires a valid admin session from the Authorization header or
// the session cookie
func AdminAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Err("MISSING_TOKEN", "Acceso no autorizado"))
			return
		}

		session, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if domain.IsUnauthorizedError(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Err("INVALID_TOKEN", "Sesión inválida o expirada"))
				return
			}
			logger.FromContext(c.Request.Context()).Error("session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Err("INTERNAL_ERROR", "Internal server error"))
			return
		}

		c.Set(adminSessionKey, session)
		c.Next()
	}
}

// ExtractToken reads a bearer token, falling back to the session cookie
func ExtractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// GetAdminSession returns the session set by AdminAuth
func GetAdminSession(c *gin.Context) *domain.AdminSession {
	v, ok := c.Get(adminSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*domain.AdminSession)
	return s
}
