// Package metrics provides Prometheus metrics for the jobscout search service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Strategy latencies are dominated by network round trips.
var defaultStrategyBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 30000}

// Manager manages all Prometheus metrics for the jobscout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	networkBuckets   []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Session lifecycle
	sessionsByStatus *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	sessionDuration  prometheus.Histogram

	// Source adapters
	sourceTasks        *prometheus.CounterVec
	strategyAttempts   *prometheus.CounterVec
	strategyLatency    *prometheus.HistogramVec
	postingsFetched    *prometheus.CounterVec
	canonicalPostings  prometheus.Histogram
	rankedPostings     prometheus.Histogram
	duplicatesCollapse prometheus.Counter

	// Scoring
	scoringLatency  prometheus.Histogram
	scoreCacheHits  prometheus.Counter
	scoreCacheMiss  prometheus.Counter
	scoreDistribute prometheus.Histogram

	// Queue Metrics - task queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics - processing performance
	workerCount             prometheus.Gauge
	workerBusy              prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Progress events
	eventsPublished *prometheus.CounterVec
	eventsDuplicate prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics - detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jobscout",
		subsystem:        "search",
		histogramBuckets: prometheus.DefBuckets,
		networkBuckets:   defaultStrategyBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	countBuckets := prometheus.ExponentialBuckets(1, 2, 12)

	m.sessionsByStatus = m.counterVec("sessions_total", "Sessions reaching a status", "status")
	m.activeSessions = m.gauge("sessions_active", "Sessions currently running")
	m.sessionDuration = m.histogram("session_duration_milliseconds", "Wall-clock time from start to a terminal status",
		prometheus.ExponentialBuckets(100, 2, 14))

	m.sourceTasks = m.counterVec("source_tasks_total", "Source x location tasks by outcome", "source", "outcome")
	m.strategyAttempts = m.counterVec("strategy_attempts_total", "Fallback strategy attempts by outcome", "source", "strategy", "outcome")
	m.strategyLatency = m.histogramVec("strategy_latency_milliseconds", "Latency of a single fallback strategy",
		m.networkBuckets, "source", "strategy")
	m.postingsFetched = m.counterVec("postings_fetched_total", "Raw postings returned by source adapters", "source")
	m.canonicalPostings = m.histogram("canonical_postings", "Canonical postings per session after merging", countBuckets)
	m.rankedPostings = m.histogram("ranked_postings", "Postings left per session after filtering", countBuckets)
	m.duplicatesCollapse = m.counter("duplicates_collapsed_total", "Raw postings folded into an existing canonical posting")

	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Time to score one session's canonical postings", m.histogramBuckets)
	m.scoreCacheHits = m.counter("score_cache_hits_total", "Score cache hits")
	m.scoreCacheMiss = m.counter("score_cache_misses_total", "Score cache misses")
	m.scoreDistribute = m.histogram("match_score", "Distribution of computed match scores", prometheus.LinearBuckets(10, 10, 10))

	m.queueSize = m.gauge("queue_size", "Current size of the task queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of tasks enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of tasks dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerCount = m.gauge("worker_count", "Number of workers in the pool")
	m.workerBusy = m.gauge("worker_busy_count", "Workers currently running a task")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time spent on one task", m.networkBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Tasks that panicked or were abandoned")

	m.eventsPublished = m.counterVec("events_published_total", "Progress events published by kind", "kind")
	m.eventsDuplicate = m.counter("events_duplicate_total", "Redelivered progress events dropped by subscribers")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// Session Metrics Functions.

// RecordSessionStatus counts a session entering status.
func RecordSessionStatus(status string) {
	globalManager.sessionsByStatus.WithLabelValues(status).Inc()
}

// AddActiveSessions moves the running-session gauge by delta.
func AddActiveSessions(delta int) {
	globalManager.activeSessions.Add(float64(delta))
}

// RecordSessionDuration records how long a session ran.
func RecordSessionDuration(d time.Duration) {
	globalManager.sessionDuration.Observe(float64(d.Milliseconds()))
}

// Source Metrics Functions.

// RecordSourceTask counts a finished task for source with outcome ok, empty or abandoned.
func RecordSourceTask(source, outcome string) {
	globalManager.sourceTasks.WithLabelValues(source, outcome).Inc()
}

// RecordStrategyAttempt records one strategy attempt and its latency.
func RecordStrategyAttempt(source, strategy, outcome string, d time.Duration) {
	globalManager.strategyAttempts.WithLabelValues(source, strategy, outcome).Inc()
	globalManager.strategyLatency.WithLabelValues(source, strategy).Observe(float64(d.Milliseconds()))
}

// RecordPostingsFetched adds n raw postings for source.
func RecordPostingsFetched(source string, n int) {
	globalManager.postingsFetched.WithLabelValues(source).Add(float64(n))
}

// RecordMergeResult records merge input and output sizes.
func RecordMergeResult(raw, canonical int) {
	globalManager.canonicalPostings.Observe(float64(canonical))
	if raw > canonical {
		globalManager.duplicatesCollapse.Add(float64(raw - canonical))
	}
}

// RecordRankedPostings records how many postings survived filtering.
func RecordRankedPostings(n int) {
	globalManager.rankedPostings.Observe(float64(n))
}

// Scoring Metrics Functions.

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoreCache records a cache lookup.
func RecordScoreCache(hit bool) {
	if hit {
		globalManager.scoreCacheHits.Inc()
		return
	}
	globalManager.scoreCacheMiss.Inc()
}

// RecordMatchScore observes a final match score.
func RecordMatchScore(score int) {
	globalManager.scoreDistribute.Observe(float64(score))
}

// Queue Metrics Functions.

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
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerBusy moves the busy-worker gauge by delta.
func AddWorkerBusy(delta int) {
	globalManager.workerBusy.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Event Metrics Functions.

// RecordEventPublished counts a published progress event.
func RecordEventPublished(kind string) {
	globalManager.eventsPublished.WithLabelValues(kind).Inc()
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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
