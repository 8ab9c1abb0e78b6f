package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docbrief"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Webhook metrics
	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Webhook events received by provider, type and outcome",
		},
		[]string{"provider", "type", "outcome"},
	)

	// Access gate metrics
	accessVerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "verdicts_total",
			Help:      "Access gate verdicts by kind",
		},
		[]string{"verdict"},
	)

	// Extraction metrics
	extractPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "pages_total",
			Help:      "Extracted PDF pages by outcome",
		},
		[]string{"outcome"},
	)

	extractDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "document_duration_seconds",
			Help:      "Duration of whole-document extraction in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Summarization metrics
	summaryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "summary",
			Name:      "requests_total",
			Help:      "Summarization requests by outcome",
		},
		[]string{"outcome"},
	)

	summaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "summary",
			Name:      "duration_seconds",
			Help:      "Duration of upstream summarization calls in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	// Worker metrics
	subscriptionResyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "subscription_resync_total",
			Help:      "Subscriptions re-fetched by the sync worker, by outcome",
		},
		[]string{"outcome"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Get route pattern from chi
		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWebhookEvent records a processed webhook event
func RecordWebhookEvent(provider, eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(provider, eventType, outcome).Inc()
}

// RecordAccessVerdict records an access gate decision
func RecordAccessVerdict(verdict string) {
	accessVerdictsTotal.WithLabelValues(verdict).Inc()
}

// RecordExtractPage records the outcome of a single page extraction
func RecordExtractPage(outcome string) {
	extractPagesTotal.WithLabelValues(outcome).Inc()
}

// RecordExtractDuration records how long a document took to extract
func RecordExtractDuration(duration time.Duration) {
	extractDuration.Observe(duration.Seconds())
}

// RecordSummary records a summarization request
func RecordSummary(outcome string, duration time.Duration) {
	summaryRequestsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		summaryDuration.Observe(duration.Seconds())
	}
}

// RecordSubscriptionResync records a worker re-sync attempt
func RecordSubscriptionResync(outcome string) {
	subscriptionResyncTotal.WithLabelValues(outcome).Inc()
}
