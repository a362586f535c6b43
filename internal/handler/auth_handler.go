package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/Winan03/AeroFlash-app/internal/dto"
	"github.com/Winan03/AeroFlash-app/internal/middleware"
	"github.com/Winan03/AeroFlash-app/internal/service"
	"github.com/Winan03/AeroFlash-app/pkg/response"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

// AuthHandler handles the admin login and logout
type AuthHandler struct {
	authService  service.AuthService
	secureCookie bool
	now          func() time.Time
}

// AuthHandlerConfig contains configuration for auth handler
type AuthHandlerConfig struct {
	// SecureCookie marks the session cookie HTTPS only
	SecureCookie bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, cfg *AuthHandlerConfig) *AuthHandler {
	h := &AuthHandler{authService: authService, now: time.Now}
	if cfg != nil {
		h.secureCookie = cfg.SecureCookie
	}
	return h
}

// Login handles POST /api/admin/login. The token is returned in the body
// and also set as the session cookie for the admin pages.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.login")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	result, err := h.authService.Login(ctx, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	maxAge := int(result.ExpiresAt.Sub(h.now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, result.Token, maxAge, "/", "", h.secureCookie, true)

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Logout handles POST /api/admin/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.logout")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	session := middleware.GetAdminSession(c)
	if session == nil {
		response.Unauthorized(c, "Acceso no autorizado")
		return
	}

	if err := h.authService.Logout(ctx, session.ID); err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, dto.MessageResponse{Message: "Sesión cerrada"})
}
