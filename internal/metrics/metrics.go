package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aeroflash"

// Booking outcomes
const (
	OutcomeConfirmed   = "confirmed"
	OutcomeUnavailable = "seat_unavailable"
	OutcomeNotFound    = "flight_not_found"
	OutcomeFailed      = "failed"
)

var (
	// Bookings counts bookSeat calls by outcome
	Bookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "requests_total",
		Help:      "Total seat bookings by outcome",
	}, []string{"outcome"})

	// SeatConflicts counts lost seat races by the layer that rejected them.
	// Labels: layer (inventory, store)
	SeatConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "seat_conflicts_total",
		Help:      "Seat claims rejected because the seat was taken",
	}, []string{"layer"})

	Compensations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "compensations_total",
		Help:      "Seat releases after a ticket write failed",
	})

	Cancellations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "cancellations_total",
		Help:      "Tickets cancelled",
	})

	BookingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "duration_seconds",
		Help:      "bookSeat latency",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// OutboxMessages counts relayed outbox messages.
	// Labels: status (published, failed, requeued, deleted)
	OutboxMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "messages_total",
		Help:      "Outbox messages by relay result",
	}, []string{"status"})

	// Emails counts notification emails.
	// Labels: status (sent, failed, skipped)
	Emails = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "emails_total",
		Help:      "Ticket emails by delivery result",
	}, []string{"status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// RecordBooking records one bookSeat outcome and its latency
func RecordBooking(outcome string, elapsed time.Duration) {
	Bookings.WithLabelValues(outcome).Inc()
	BookingDuration.Observe(elapsed.Seconds())
}

// RecordSeatConflict records a claim lost at layer
func RecordSeatConflict(layer string) {
	SeatConflicts.WithLabelValues(layer).Inc()
}

// RecordOutbox adds n messages with the given relay status
func RecordOutbox(status string, n int) {
	if n <= 0 {
		return
	}
	OutboxMessages.WithLabelValues(status).Add(float64(n))
}

// RecordEmail records one notification email result
func RecordEmail(status string) {
	Emails.WithLabelValues(status).Inc()
}

// Middleware observes request latency by route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
