package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBooking(t *testing.T) {
	before := testutil.ToFloat64(Bookings.WithLabelValues(OutcomeConfirmed))
	RecordBooking(OutcomeConfirmed, 30*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(Bookings.WithLabelValues(OutcomeConfirmed)))
}

func TestRecordOutbox_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(OutboxMessages.WithLabelValues("published"))
	RecordOutbox("published", 0)
	RecordOutbox("published", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(OutboxMessages.WithLabelValues("published")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `aeroflash_http_request_duration_seconds_count{method="GET",route="/ping",status="200"}`))
}
