// Package metrics provides Prometheus metrics for the Mergington signups service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "mergington"
	defaultRefreshInterval = 10 * time.Second
	rosterSubsystem        = "activities"
)

// Latency buckets in milliseconds.
var latencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // shared bucket layout

// Manager owns every collector exposed by the service.
type Manager struct {
	namespace       string
	enabled         bool
	refreshInterval time.Duration
	registry        prometheus.Registerer

	// Roster metrics
	signups      *prometheus.CounterVec
	withdrawals  *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	participants *prometheus.GaugeVec
	activities   prometheus.Gauge

	// Notification pipeline
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueEnqueueErrors     *prometheus.CounterVec
	notificationsDelivered prometheus.Counter
	notificationsFailed    prometheus.Counter
	deliveryLatency        prometheus.Histogram
	workerCount            prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       defaultNamespace,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.signups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: rosterSubsystem,
		Name:      "signups_total",
		Help:      "Total number of successful signups by activity",
	}, []string{"activity"})

	m.withdrawals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: rosterSubsystem,
		Name:      "withdrawals_total",
		Help:      "Total number of successful withdrawals by activity",
	}, []string{"activity"})

	m.rejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: rosterSubsystem,
		Name:      "rejected_operations_total",
		Help:      "Roster operations rejected by reason (not_found, already_signed_up, not_signed_up)",
	}, []string{"operation", "reason"})

	m.participants = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: rosterSubsystem,
		Name:      "participants",
		Help:      "Current roster size by activity",
	}, []string{"activity"})

	m.activities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: rosterSubsystem,
		Name:      "activities",
		Help:      "Number of activities in the directory",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "queue_size",
		Help:      "Roster changes waiting for delivery",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "queue_capacity",
		Help:      "Maximum number of queued roster changes",
	})

	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "enqueue_errors_total",
		Help:      "Roster changes dropped before delivery by reason",
	}, []string{"reason"})

	m.notificationsDelivered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "delivered_total",
		Help:      "Roster changes handed to the sink successfully",
	})

	m.notificationsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "failed_total",
		Help:      "Roster changes the sink rejected",
	})

	m.deliveryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "delivery_latency_milliseconds",
		Help:      "Time spent handing one roster change to the sink",
		Buckets:   latencyBuckets,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "worker_count",
		Help:      "Number of notification workers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of running goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause in milliseconds",
		Buckets:   latencyBuckets,
	})
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Roster metrics.

// RecordSignup counts a successful signup. The roster gauge is owned by
// the store, see UpdateParticipants.
func RecordSignup(activity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.signups.WithLabelValues(activity).Inc()
}

// RecordWithdrawal counts a successful withdrawal.
func RecordWithdrawal(activity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.withdrawals.WithLabelValues(activity).Inc()
}

// RecordRejection counts a rejected roster operation.
func RecordRejection(operation, reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rejections.WithLabelValues(operation, reason).Inc()
}

// UpdateParticipants sets the roster gauge for one activity.
func UpdateParticipants(activity string, rosterSize int) {
	if !globalManager.enabled {
		return
	}
	globalManager.participants.WithLabelValues(activity).Set(float64(rosterSize))
}

// UpdateActivityCount sets the number of activities in the directory.
func UpdateActivityCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.activities.Set(float64(count))
}

// Notification pipeline metrics.

// UpdateQueueSize sets the number of queued roster changes.
func UpdateQueueSize(size int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError counts a roster change that could not be queued.
func RecordQueueEnqueueError(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordNotificationDelivered counts a delivered roster change.
func RecordNotificationDelivered(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.notificationsDelivered.Inc()
	globalManager.deliveryLatency.Observe(latencyMs)
}

// RecordNotificationFailed counts a roster change the sink rejected.
func RecordNotificationFailed(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.notificationsFailed.Inc()
	globalManager.deliveryLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the number of notification workers.
func UpdateWorkerCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerCount.Set(float64(count))
}

// HTTP metrics.

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// System metrics.

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before anything records or scrapes.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns the global manager's refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
