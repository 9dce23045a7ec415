package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraud",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"method", "route"},
	)

	// Assessment metrics
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "assessments_total",
			Help:      "Verdicts produced, by verdict and classifier variant",
		},
		[]string{"verdict", "model"},
	)

	EncoderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "encoder_fallbacks_total",
			Help:      "Text columns encoded with the fallback code",
		},
		[]string{"column", "reason"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "prediction_failures_total",
			Help:      "Classifier calls that failed and degraded to probability 0",
		},
		[]string{"model"},
	)

	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "reports_generated_total",
			Help:      "PDF report generation attempts by outcome",
		},
		[]string{"status"},
	)

	QuestionsAnswered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "questions_answered_total",
			Help:      "Q&A answers by resolution rule",
		},
		[]string{"rule"},
	)

	AssetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fraud",
			Name:      "asset_load_duration_seconds",
			Help:      "Time spent loading classifier artifacts and encoders",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)
)

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
