package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects everything the backend exports on /metrics.
type Metrics struct {
	// Request surface
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Terminal sessions
	SessionsActive prometheus.Gauge
	SessionsOpened prometheus.Counter
	TerminalBytes  prometheus.Counter

	// Subsystem calls (git, tasks, mcp)
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec
	ServiceErrors   *prometheus.CounterVec

	// Stream socket
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
	WSDropped     prometheus.Counter

	Uptime prometheus.GaugeFunc

	// A few hot values mirrored for the health endpoint, which reports
	// JSON rather than scraping its own /metrics.
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot is the health endpoint's view of the counters.
type MetricsSnapshot struct {
	TotalRequests     int64
	TotalErrors       int64
	ActiveSessions    int64
	ActiveConnections int64
	TotalDuration     float64
	RequestCount      int64
}

// Durations skew small on a loopback server, but git operations on large
// repositories stretch into seconds.
var durationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10}

// Payloads range from one keystroke to a multi-megabyte diff.
var sizeBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304}

// NewMetrics registers the collector on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers the collector on a custom registry.
// Tests use this to avoid duplicate registration on the default one.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	started := time.Now()

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptdeck_http_requests_total",
				Help: "Requests served, by method, route and status.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptdeck_http_request_duration_seconds",
				Help:    "Time spent serving a request.",
				Buckets: durationBuckets,
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptdeck_http_request_size_bytes",
				Help:    "Request body sizes.",
				Buckets: sizeBuckets,
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptdeck_http_response_size_bytes",
				Help:    "Response body sizes.",
				Buckets: sizeBuckets,
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "promptdeck_terminal_sessions_active",
				Help: "Terminal sessions currently registered.",
			},
		),
		SessionsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "promptdeck_terminal_sessions_opened_total",
				Help: "Terminal sessions opened since start.",
			},
		),
		TerminalBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "promptdeck_terminal_output_bytes_total",
				Help: "Bytes read from session PTYs.",
			},
		),

		ServiceCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptdeck_service_calls_total",
				Help: "Subsystem calls, by service, method and outcome.",
			},
			[]string{"service", "method", "status"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptdeck_service_duration_seconds",
				Help:    "Time spent inside a subsystem call.",
				Buckets: durationBuckets,
			},
			[]string{"service", "method"},
		),
		ServiceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptdeck_service_errors_total",
				Help: "Subsystem failures, by error kind.",
			},
			[]string{"service", "method", "error_type"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "promptdeck_ws_connections",
				Help: "Stream clients currently connected.",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptdeck_ws_messages_total",
				Help: "Stream frames, by direction and event type.",
			},
			[]string{"direction", "type"},
		),
		WSDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "promptdeck_ws_dropped_total",
				Help: "Frames dropped because a client fell behind.",
			},
		),

		Uptime: factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "promptdeck_uptime_seconds",
				Help: "Seconds since the backend started.",
			},
			func() float64 { return time.Since(started).Seconds() },
		),
	}
}

// RecordHTTPRequest feeds one finished request into the vectors and the
// health snapshot.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordServiceCall notes one subsystem call and its duration.
func (m *Metrics) RecordServiceCall(service, method, status string, duration time.Duration) {
	m.ServiceCalls.WithLabelValues(service, method, status).Inc()
	m.ServiceDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordServiceError notes a subsystem failure.
func (m *Metrics) RecordServiceError(service, method, errorType string) {
	m.ServiceErrors.WithLabelValues(service, method, errorType).Inc()
}

// RecordWSMessage counts one stream frame.
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// RecordWSDropped counts a frame dropped on a slow client.
func (m *Metrics) RecordWSDropped() {
	m.WSDropped.Inc()
}

// SetSessionsActive tracks the registry size.
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// IncSessionsOpened counts a session open.
func (m *Metrics) IncSessionsOpened() {
	m.SessionsOpened.Inc()
}

// AddTerminalBytes accumulates PTY output volume.
func (m *Metrics) AddTerminalBytes(n int) {
	m.TerminalBytes.Add(float64(n))
}

// IncWSConnections tracks a client arriving.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections tracks a client leaving.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
