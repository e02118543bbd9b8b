package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Session metrics
	SessionGroups  prometheus.Gauge
	SessionWrites  prometheus.Counter
	SessionsReaped prometheus.Counter

	// Execution metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	RunsInFlight    prometheus.Gauge
	CleanupFailures prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a metrics collector registered on the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "event"},
		),

		SessionGroups: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_session_groups",
				Help: "Number of session groups with at least one live connection",
			},
		),
		SessionWrites: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_session_writes_total",
				Help: "Total number of session document writes",
			},
		),
		SessionsReaped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_sessions_reaped_total",
				Help: "Total number of expired sessions removed",
			},
		),

		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_runs_total",
				Help: "Total number of sandboxed executions",
			},
			[]string{"language", "status"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_run_duration_seconds",
				Help:    "Sandboxed execution duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
			},
			[]string{"language"},
		),
		RunsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_runs_in_flight",
				Help: "Number of sandboxed executions currently running",
			},
		),
		CleanupFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_workspace_cleanup_failures_total",
				Help: "Total number of failed workspace removals",
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message.
func (m *Metrics) RecordWSMessage(direction, event string) {
	m.WSMessages.WithLabelValues(direction, event).Inc()
}

// RecordRun records a completed sandboxed execution.
func (m *Metrics) RecordRun(language, status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(language, status).Inc()
	m.RunDuration.WithLabelValues(language).Observe(duration.Seconds())
}

// IncWSConnections increments WebSocket connections.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// SetSessionGroups sets the number of live session groups.
func (m *Metrics) SetSessionGroups(count int) {
	m.SessionGroups.Set(float64(count))
}

// IncSessionWrites increments the session write counter.
func (m *Metrics) IncSessionWrites() {
	m.SessionWrites.Inc()
}

// AddSessionsReaped adds to the reaped sessions counter.
func (m *Metrics) AddSessionsReaped(count int) {
	m.SessionsReaped.Add(float64(count))
}

// IncCleanupFailures increments the workspace cleanup failure counter.
func (m *Metrics) IncCleanupFailures() {
	m.CleanupFailures.Inc()
}
