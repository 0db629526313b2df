// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cms_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Uploads counts stored files by category.
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_media_uploads_total",
			Help: "Stored media uploads by category.",
		},
		[]string{"category"},
	)

	// Deletes counts delete attempts by result (deleted, in_use, not_found, error).
	Deletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_media_deletes_total",
			Help: "Media delete attempts by result.",
		},
		[]string{"result"},
	)

	// UsageIndexDuration observes full usage index rebuilds.
	UsageIndexDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cms_media_usage_index_duration_seconds",
			Help:    "Time to rebuild the media usage index.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

// Middleware records request counts and latency. Routes are labelled by
// their registered pattern to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
