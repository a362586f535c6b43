package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/validation"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/response"
)

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrFlightNotFound):
		response.Error(c, http.StatusNotFound, "FLIGHT_NOT_FOUND", "Vuelo no encontrado")
	case errors.Is(err, domain.ErrTicketNotFound):
		response.Error(c, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket no encontrado")
	case errors.Is(err, domain.ErrSeatUnavailable):
		response.Conflict(c, "SEAT_UNAVAILABLE", "Asiento no disponible")
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Credenciales inválidas")
	case domain.IsUnauthorizedError(err):
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Sesión inválida o expirada")
	default:
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}

// bindError answers a request body that failed binding or validation
func bindError(c *gin.Context, err error) {
	response.BadRequest(c, validation.Describe(err))
}
