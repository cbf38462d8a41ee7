// Package metrics provides Prometheus metrics for the gridiron valuation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine metrics
	valuationRuns    *prometheus.CounterVec
	valuationLatency prometheus.Histogram
	playersValued    prometheus.Counter
	guardrailStatus  *prometheus.CounterVec
	verdicts         *prometheus.CounterVec
	scenarioRuns     prometheus.Counter
	scenarioDiffRows prometheus.Histogram
	forecastRuns     prometheus.Counter

	// Repository metrics
	snapshotWrites         prometheus.Counter
	snapshotErrors         prometheus.Counter
	repositoryQueryLatency prometheus.Histogram

	// Recompute job queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	jobsDuplicate      prometheus.Counter

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	jobsProcessed           prometheus.Counter

	// HTTP and tools
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	toolCalls           *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager; collectors are registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridiron",
		subsystem:        "valuation",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.valuationRuns = auto.NewCounterVec(m.counter("runs_total", "Valuation snapshot computations by policy"), []string{"policy"})
	m.valuationLatency = auto.NewHistogram(m.histogram("latency_milliseconds", "Valuation computation latency in milliseconds", nil))
	m.playersValued = auto.NewCounter(m.counter("players_valued_total", "Players valued across all runs"))
	m.guardrailStatus = auto.NewCounterVec(m.counter("guardrail_status_total", "Budget guardrail evaluations by status"), []string{"status"})
	m.verdicts = auto.NewCounterVec(m.counter("verdicts_total", "Before/after verdicts issued"), []string{"verdict"})
	m.scenarioRuns = auto.NewCounter(m.counter("scenario_runs_total", "Scenario comparisons computed"))
	m.scenarioDiffRows = auto.NewHistogram(m.histogram("scenario_diff_rows", "Rows per scenario diff", prometheus.LinearBuckets(0, 10, 12)))
	m.forecastRuns = auto.NewCounter(m.counter("forecast_runs_total", "Forecast projections computed"))

	m.snapshotWrites = auto.NewCounter(m.counter("snapshot_rows_written_total", "Valuation snapshot rows persisted"))
	m.snapshotErrors = auto.NewCounter(m.counter("snapshot_write_errors_total", "Failed snapshot replacements"))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogram("repository_query_latency_milliseconds", "Repository query latency in milliseconds", nil))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Recompute jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum recompute queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)"))
	m.queueEnqueueTotal = auto.NewCounter(m.counter("queue_enqueue_total", "Recompute jobs enqueued"))
	m.queueDequeueTotal = auto.NewCounter(m.counter("queue_dequeue_total", "Recompute jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Recompute jobs rejected by the queue"))
	m.jobsDuplicate = auto.NewCounter(m.counter("jobs_duplicate_total", "Recompute requests dropped as duplicates"))

	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Number of running recompute workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Recompute job latency in milliseconds", nil))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Recompute jobs that failed"))
	m.jobsProcessed = auto.NewCounter(m.counter("jobs_processed_total", "Recompute jobs completed"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"})
	m.toolCalls = auto.NewCounterVec(m.counter("tool_calls_total", "MCP tool invocations by outcome"), []string{"tool", "outcome"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component"), []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
}

// RecordValuation records one snapshot computation.
func RecordValuation(policyID string, players int, latencyMs float64) {
	globalManager.valuationRuns.WithLabelValues(policyID).Inc()
	globalManager.playersValued.Add(float64(players))
	globalManager.valuationLatency.Observe(latencyMs)
}

// RecordGuardrailStatus counts a guardrail evaluation.
func RecordGuardrailStatus(status string) {
	globalManager.guardrailStatus.WithLabelValues(status).Inc()
}

// RecordVerdict counts a before/after verdict.
func RecordVerdict(verdict string) {
	globalManager.verdicts.WithLabelValues(verdict).Inc()
}

// RecordScenarioRun records a scenario comparison and its diff size.
func RecordScenarioRun(diffRows int) {
	globalManager.scenarioRuns.Inc()
	globalManager.scenarioDiffRows.Observe(float64(diffRows))
}

// RecordForecastRun counts a forecast projection.
func RecordForecastRun() {
	globalManager.forecastRuns.Inc()
}

// RecordSnapshotWrite counts persisted snapshot rows.
func RecordSnapshotWrite(rows int) {
	globalManager.snapshotWrites.Add(float64(rows))
}

// RecordSnapshotError counts a failed snapshot replacement.
func RecordSnapshotError() {
	globalManager.snapshotErrors.Inc()
}

// RecordRepositoryQueryLatency records repository query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordJobDuplicate counts a recompute request dropped by the deduper.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records job latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordJobProcessed increments the completed job counter.
func RecordJobProcessed() {
	globalManager.jobsProcessed.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordToolCall counts an MCP tool invocation; outcome is "ok" or "error".
func RecordToolCall(tool, outcome string) {
	globalManager.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
