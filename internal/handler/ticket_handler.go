package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/dto"
	"github.com/Winan03/AeroFlash-app/internal/service"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/response"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

// error_type values of the ticket lookup form
const (
	errorTypeValidation = "validation"
	errorTypeFormat     = "format"
	errorTypeNotFound   = "not_found"
	errorTypeServer     = "server_error"
)

// TicketHandler handles bookings and ticket administration
type TicketHandler struct {
	reservationService service.ReservationService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(reservationService service.ReservationService) *TicketHandler {
	return &TicketHandler{reservationService: reservationService}
}

// BookFlight handles POST /api/book_flight
func (h *TicketHandler) BookFlight(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.BookFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}
	span.SetAttributes(
		attribute.String("flight_id", req.FlightID),
		attribute.String("seat", req.Asiento),
	)

	result, err := h.reservationService.BookSeat(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("ticket_code", result.TicketCode))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetTicket handles GET /api/ticket/:code
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	code := domain.NormalizeTicketCode(c.Param("code"))
	if code == "" {
		response.BadRequest(c, "Código de ticket inválido")
		return
	}
	span.SetAttributes(attribute.String("ticket_code", code))

	ticket, err := h.reservationService.GetByCode(ctx, code)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	response.Success(c, dto.TicketResponse{TicketCode: code, Ticket: ticket})
}

// SearchTicket handles POST /search_ticket. Failures carry error_type so
// the lookup form can tell a typo from a missing ticket.
func (h *TicketHandler) SearchTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.search")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.SearchTicketRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithType(c, http.StatusBadRequest, "VALIDATION_ERROR", "Datos de solicitud inválidos", errorTypeValidation)
		return
	}

	code := domain.NormalizeTicketCode(req.TicketCode)
	if code == "" {
		response.ErrorWithType(c, http.StatusBadRequest, "VALIDATION_ERROR", "Código de ticket requerido", errorTypeValidation)
		return
	}
	if err := domain.ValidateLookupCode(code); err != nil {
		response.ErrorWithType(c, http.StatusBadRequest, "INVALID_FORMAT", "El código debe tener entre 6 y 10 caracteres", errorTypeFormat)
		return
	}
	span.SetAttributes(attribute.String("ticket_code", code))

	ticket, err := h.reservationService.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			response.ErrorWithType(c, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket no encontrado", errorTypeNotFound)
			return
		}
		span.RecordError(err)
		logger.FromContext(ctx).Error("ticket lookup failed", zap.String("ticket_code", code), zap.Error(err))
		response.ErrorWithType(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Error interno del servidor", errorTypeServer)
		return
	}

	response.Success(c, dto.TicketResponse{
		Message:     "Ticket encontrado exitosamente",
		TicketCode:  code,
		Ticket:      ticket,
		RedirectURL: "/ticket/" + code,
	})
}

// AvailableSeats handles GET /api/available_seats/:flight_id
func (h *TicketHandler) AvailableSeats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.available_seats")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	flightID := c.Param("flight_id")
	span.SetAttributes(attribute.String("flight_id", flightID))

	result, err := h.reservationService.SeatAvailability(ctx, flightID)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// ListTickets handles GET /api/tickets and GET /api/reservations
func (h *TicketHandler) ListTickets(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.reservationService.ListTickets(ctx)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	span.SetAttributes(attribute.Int("count", result.Count))
	response.Success(c, result)
}

// UpdateTicket handles PUT /api/tickets/:id
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	code := domain.NormalizeTicketCode(c.Param("id"))
	var req dto.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}
	span.SetAttributes(
		attribute.String("ticket_code", code),
		attribute.String("estado", req.Estado),
	)

	ticket, err := h.reservationService.UpdateStatus(ctx, code, req.Estado)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.TicketResponse{
		Message:    "Ticket actualizado exitosamente",
		TicketCode: code,
		Ticket:     ticket,
	})
}

// CancelTicket handles DELETE /api/tickets/:id and PUT /api/reservations/:id/cancel.
// The ticket is kept with a cancelled status.
func (h *TicketHandler) CancelTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	code := domain.NormalizeTicketCode(c.Param("id"))
	span.SetAttributes(attribute.String("ticket_code", code))

	ticket, err := h.reservationService.Cancel(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.TicketResponse{
		Message:    "Reserva cancelada exitosamente",
		TicketCode: code,
		Ticket:     ticket,
	})
}
