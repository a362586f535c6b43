package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Winan03/AeroFlash-app/internal/service"
	"github.com/Winan03/AeroFlash-app/pkg/response"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

// StatsHandler serves the admin dashboard figures
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Dashboard handles GET /api/dashboard-stats
func (h *StatsHandler) Dashboard(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.stats.dashboard")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.statsService.Dashboard(ctx)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// FlightStats handles GET /api/flights/:id/stats
func (h *StatsHandler) FlightStats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.stats.flight")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("flight_id", id))

	result, err := h.statsService.FlightStats(ctx, id)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
