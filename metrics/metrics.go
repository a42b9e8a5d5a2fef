// Package metrics exposes Prometheus collectors for captures and the HTTP
// surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitemodel_stage_duration_seconds",
			Help:    "Duration of capture pipeline stages in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	captureFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemodel_capture_failures_total",
			Help: "Total number of failed captures by stage",
		},
		[]string{"stage"},
	)

	capturesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sitemodel_captures_total",
			Help: "Total number of completed captures",
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitemodel_active_sessions",
			Help: "Number of browser sessions currently held by a capture",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemodel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitemodel_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(
		stageDuration,
		captureFailures,
		capturesTotal,
		activeSessions,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// ObserveStage records how long one pipeline stage took.
func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CaptureFailed counts a capture aborted at stage.
func CaptureFailed(stage string) {
	captureFailures.WithLabelValues(stage).Inc()
}

// CaptureSucceeded counts a completed capture.
func CaptureSucceeded() {
	capturesTotal.Inc()
}

// SessionOpened and SessionClosed track live browser sessions.
func SessionOpened() { activeSessions.Inc() }

func SessionClosed() { activeSessions.Dec() }

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
