// Package metrics provides Prometheus metrics for the heatsheet service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the heatsheet service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Schedule metrics
	projectionsTotal  prometheus.Counter
	projectionLatency prometheus.Histogram
	heatsLoaded       prometheus.Gauge
	rosterLoads       prometheus.Counter
	rosterErrors      prometheus.Counter
	overridesSet      prometheus.Counter
	overridesCleared  prometheus.Counter
	overrideCount     prometheus.Gauge

	// Actual-end store
	storeRecords      prometheus.Gauge
	storeWriteLatency prometheus.Histogram
	storeErrors       prometheus.Counter

	// Persistence queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Persistence workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "heatsheet",
		subsystem:        "schedule",
		histogramBuckets: latencyBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.projectionsTotal = m.counter("projections_total", "Total number of schedule projections computed")
	m.projectionLatency = m.histogram("projection_latency_milliseconds", "Schedule projection latency in milliseconds", m.histogramBuckets)
	m.heatsLoaded = m.gauge("heats_loaded", "Number of heats in the current roster batch")
	m.rosterLoads = m.counter("roster_loads_total", "Total number of roster batches loaded")
	m.rosterErrors = m.counter("roster_errors_total", "Total number of rejected roster uploads")
	m.overridesSet = m.counter("overrides_set_total", "Total number of actual end times recorded by the operator")
	m.overridesCleared = m.counter("overrides_cleared_total", "Total number of actual end times cleared")
	m.overrideCount = m.gauge("overrides", "Number of heats with an operator-recorded actual end")

	m.storeRecords = m.gauge("store_records", "Number of actual end times held by the store")
	m.storeWriteLatency = m.histogram("store_write_latency_milliseconds", "Actual-end store write latency in milliseconds", m.histogramBuckets)
	m.storeErrors = m.counter("store_errors_total", "Total number of actual-end store errors")

	m.queueSize = m.gauge("queue_size", "Current size of the persistence queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum persistence queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Persistence queue utilization ratio (size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of persistence messages enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of persistence messages dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of persistence messages dropped on enqueue")

	m.workerCount = m.gauge("worker_count", "Number of persistence workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of persistence workers currently writing")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Persistence worker latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of persistence worker errors")

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: m.constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// observe runs f against the global manager once it exists.
func observe(f func()) {
	if globalManager != nil {
		f()
	}
}

// RecordProjection records one schedule projection and its latency.
func RecordProjection(latencyMs float64) {
	observe(func() {
		globalManager.projectionsTotal.Inc()
		globalManager.projectionLatency.Observe(latencyMs)
	})
}

// UpdateHeatsLoaded sets the number of heats in the current batch.
func UpdateHeatsLoaded(count int) {
	observe(func() { globalManager.heatsLoaded.Set(float64(count)) })
}

// RecordRosterLoad increments the roster loads counter.
func RecordRosterLoad() {
	observe(globalManager.rosterLoads.Inc)
}

// RecordRosterError increments the rejected roster counter.
func RecordRosterError() {
	observe(globalManager.rosterErrors.Inc)
}

// RecordOverrideSet increments the recorded actual ends counter.
func RecordOverrideSet() {
	observe(globalManager.overridesSet.Inc)
}

// RecordOverrideCleared increments the cleared actual ends counter by n.
func RecordOverrideCleared(n int) {
	observe(func() { globalManager.overridesCleared.Add(float64(n)) })
}

// UpdateOverrideCount sets the number of live operator overrides.
func UpdateOverrideCount(count int) {
	observe(func() { globalManager.overrideCount.Set(float64(count)) })
}

// UpdateStoreRecords sets the number of persisted actual ends.
func UpdateStoreRecords(count int) {
	observe(func() { globalManager.storeRecords.Set(float64(count)) })
}

// RecordStoreWriteLatency records a store write latency in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) {
	observe(func() { globalManager.storeWriteLatency.Observe(latencyMs) })
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	observe(globalManager.storeErrors.Inc)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	observe(func() { globalManager.queueSize.Set(float64(size)) })
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	observe(func() { globalManager.queueCapacity.Set(float64(capacity)) })
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	observe(func() { globalManager.queueUtilization.Set(utilization) })
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	observe(globalManager.queueEnqueueRate.Inc)
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	observe(globalManager.queueDequeueRate.Inc)
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	observe(globalManager.queueEnqueueErrors.Inc)
}

// UpdateWorkerCount sets the number of persistence workers.
func UpdateWorkerCount(count int) {
	observe(func() { globalManager.workerCount.Set(float64(count)) })
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	observe(func() { globalManager.workerActiveCount.Set(float64(count)) })
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	observe(func() { globalManager.workerProcessingLatency.Observe(latencyMs) })
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	observe(globalManager.workerErrorRate.Inc)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	observe(func() { globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc() })
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	observe(func() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	})
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	observe(func() { globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc() })
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	observe(func() { globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc() })
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	observe(func() { globalManager.systemMemoryUsage.Set(float64(bytes)) })
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	observe(func() { globalManager.systemGoroutineCount.Set(float64(count)) })
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	observe(func() { globalManager.systemGCPauseTime.Observe(pauseMs) })
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Configure rebuilds the global manager on a fresh registry with opts. Call
// it once at startup, before any handler captures GetRegistry.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// Since returns the milliseconds elapsed since start, for latency recorders.
func Since(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
