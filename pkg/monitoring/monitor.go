package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 调度器业务指标
	RoundsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_rounds_completed_total",
			Help: "Completed practice rounds, labelled by outcome",
		},
		[]string{"outcome"}, // perfect / imperfect
	)

	RotationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_rotations_total",
			Help: "Triple helix path rotations",
		},
	)

	MasteryTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_mastery_transitions_total",
			Help: "Boundary level transitions, labelled by direction",
		},
		[]string{"direction"}, // promotion / demotion
	)

	VersionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_version_conflicts_total",
			Help: "Round commits rejected due to stale state versions",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RoundsCompleted)
	prometheus.MustRegister(RotationsTotal)
	prometheus.MustRegister(MasteryTransitions)
	prometheus.MustRegister(VersionConflicts)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
