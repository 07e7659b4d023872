package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// procedureRuns counts procedure runs by outcome (ok, cached, error)
	procedureRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stikpet_procedure_runs_total",
		Help: "Total procedure runs by procedure and result",
	}, []string{"procedure", "result"})

	// procedureDuration tracks procedure latency including storage
	procedureDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stikpet_procedure_duration_seconds",
		Help:    "Procedure run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"procedure"})

	// batterySize tracks how many procedures a battery asks for
	batterySize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stikpet_battery_procedures",
		Help:    "Number of procedures per battery request",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stikpet_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
)

func observeRun(procedure, result string, elapsed time.Duration) {
	procedureRuns.WithLabelValues(procedure, result).Inc()
	procedureDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// requestMetrics counts requests by matched route so that path parameters
// do not explode the label set.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
