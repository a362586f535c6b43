package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Winan03/AeroFlash-app/internal/dto"
	"github.com/Winan03/AeroFlash-app/internal/service"
	"github.com/Winan03/AeroFlash-app/pkg/response"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

// FlightHandler handles flight search and the admin flight catalogue
type FlightHandler struct {
	flightService service.FlightService
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(flightService service.FlightService) *FlightHandler {
	return &FlightHandler{flightService: flightService}
}

// SearchFlights handles POST /api/search_flights
func (h *FlightHandler) SearchFlights(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.flight.search")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.SearchFlightsRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	result, err := h.flightService.SearchFlights(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", result.Count))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListFlights handles GET /api/flights
func (h *FlightHandler) ListFlights(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.flight.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.flightService.ListFlights(ctx)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// CreateFlight handles POST /api/flights
func (h *FlightHandler) CreateFlight(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.flight.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	result, err := h.flightService.CreateFlight(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("flight_id", result.Flight.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// UpdateFlight handles PUT /api/flights/:id
func (h *FlightHandler) UpdateFlight(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.flight.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("flight_id", id))

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	result, err := h.flightService.UpdateFlight(ctx, id, fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// DeleteFlight handles DELETE /api/flights/:id
func (h *FlightHandler) DeleteFlight(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.flight.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("flight_id", id))

	if err := h.flightService.DeleteFlight(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.MessageResponse{Message: "Vuelo eliminado exitosamente"})
}
