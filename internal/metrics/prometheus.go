package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the recording platform
type Metrics struct {
	// Session metrics
	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsFailed    prometheus.Counter
	ActiveSessions    prometheus.Gauge
	EncodeDuration    prometheus.Histogram

	// Artifact metrics
	ArtifactDuration prometheus.Histogram
	ArtifactSize     prometheus.Histogram

	// Prompt metrics
	PageLoads       prometheus.Counter
	PageLoadErrors  prometheus.Counter
	PassagesServed  prometheus.Counter
	PassagesSkipped prometheus.Counter

	// Review metrics
	ReviewsAccepted prometheus.Counter
	ReviewsRejected prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Session metrics
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_sessions_started_total",
			Help: "Total number of recording sessions started",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_sessions_completed_total",
			Help: "Total number of recording sessions that reached ready",
		}),
		SessionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_sessions_failed_total",
			Help: "Total number of recording sessions that ended in error",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "recording_active_sessions",
			Help: "Current number of live recording sessions",
		}),
		EncodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recording_encode_duration_seconds",
			Help:    "Time spent normalizing and encoding a capture",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),

		// Artifact metrics
		ArtifactDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recording_artifact_duration_seconds",
			Help:    "Audio duration of finished recordings",
			Buckets: prometheus.LinearBuckets(0, 10, 8), // 0s to 70s
		}),
		ArtifactSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recording_artifact_size_bytes",
			Help:    "Size of finished recording artifacts in bytes",
			Buckets: prometheus.ExponentialBuckets(16384, 2, 10), // 16KB to ~16MB
		}),

		// Prompt metrics
		PageLoads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_passage_page_loads_total",
			Help: "Total number of passage pages loaded",
		}),
		PageLoadErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_passage_page_load_errors_total",
			Help: "Total number of failed passage page loads",
		}),
		PassagesServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_passages_served_total",
			Help: "Total number of passages served to recorders",
		}),
		PassagesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_passages_skipped_total",
			Help: "Total number of passages skipped by recorders",
		}),

		// Review metrics
		ReviewsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_reviews_accepted_total",
			Help: "Total number of recordings accepted in review",
		}),
		ReviewsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recording_reviews_rejected_total",
			Help: "Total number of recordings rejected in review",
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recording_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recording_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recording_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordSessionStarted increments the sessions started counter
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
}

// RecordSessionCompleted records a finished recording
func (m *Metrics) RecordSessionCompleted(encodeSeconds, artifactSeconds float64, artifactBytes int) {
	m.SessionsCompleted.Inc()
	m.EncodeDuration.Observe(encodeSeconds)
	m.ArtifactDuration.Observe(artifactSeconds)
	m.ArtifactSize.Observe(float64(artifactBytes))
}

// RecordSessionFailed increments the failed sessions counter
func (m *Metrics) RecordSessionFailed() {
	m.SessionsFailed.Inc()
}

// SetActiveSessions sets the live session gauge
func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

// RecordPageLoad increments the page load counter
func (m *Metrics) RecordPageLoad() {
	m.PageLoads.Inc()
}

// RecordPageLoadError increments the page load error counter
func (m *Metrics) RecordPageLoadError() {
	m.PageLoadErrors.Inc()
}

// RecordPassageServed increments the passages served counter
func (m *Metrics) RecordPassageServed() {
	m.PassagesServed.Inc()
}

// RecordPassageSkipped increments the passages skipped counter
func (m *Metrics) RecordPassageSkipped() {
	m.PassagesSkipped.Inc()
}

// RecordReviewAccepted increments the accepted reviews counter
func (m *Metrics) RecordReviewAccepted() {
	m.ReviewsAccepted.Inc()
}

// RecordReviewRejected increments the rejected reviews counter
func (m *Metrics) RecordReviewRejected() {
	m.ReviewsRejected.Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
