package telemetry

// ClassifyBuckets covers in-process classification, which is pure CPU work
// on a single statement.
var ClassifyBuckets = []float64{0.00001, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05}

// Classification Metrics
var (
	// ClassificationsTotal counts grammar passes by backend and resulting status
	ClassificationsTotal CounterVec = noopCounterVec{}

	// ClassifyDurationSeconds measures a grammar pass by backend
	ClassifyDurationSeconds HistogramVec = noopHistogramVec{}

	// ReparsesTotal counts second passes triggered by a wider collect request
	ReparsesTotal Counter = NoopStat{}

	// DegradedStatementsTotal counts statements below PARSED by status
	DegradedStatementsTotal CounterVec = noopCounterVec{}

	// InternalFaultsTotal counts passes aborted by a recovered fault or depth limit
	InternalFaultsTotal CounterVec = noopCounterVec{}
)

// Result Cache Metrics
var (
	// CacheLookupsTotal counts canonical cache lookups by result (hit, miss)
	CacheLookupsTotal CounterVec = noopCounterVec{}

	// CacheEvictionsTotal counts entries evicted from session caches
	CacheEvictionsTotal Counter = NoopStat{}

	// CacheEntries tracks entries across all session caches
	CacheEntries Gauge = NoopStat{}

	// ActiveSessions tracks live classifier sessions
	ActiveSessions Gauge = NoopStat{}
)

// InitMetrics initializes all Prometheus metrics.
// Must be called after InitializeTelemetry().
func InitMetrics() {
	ClassificationsTotal = NewCounterVec(
		"classifications_total",
		"Total grammar passes by backend and status",
		[]string{"backend", "status"},
	)
	ClassifyDurationSeconds = NewHistogramVec(
		"classify_duration_seconds",
		"Grammar pass latency by backend",
		[]string{"backend"},
		ClassifyBuckets,
	)
	ReparsesTotal = NewCounter(
		"reparses_total",
		"Total second passes caused by wider collect requests",
	)
	DegradedStatementsTotal = NewCounterVec(
		"degraded_statements_total",
		"Statements classified below PARSED by status",
		[]string{"status"},
	)
	InternalFaultsTotal = NewCounterVec(
		"internal_faults_total",
		"Passes aborted and reported INVALID by cause",
		[]string{"cause"},
	)

	CacheLookupsTotal = NewCounterVec(
		"cache_lookups_total",
		"Canonical result cache lookups by result",
		[]string{"result"},
	)
	CacheEvictionsTotal = NewCounter(
		"cache_evictions_total",
		"Total entries evicted from session result caches",
	)
	CacheEntries = NewGauge(
		"cache_entries",
		"Entries held across all session result caches",
	)
	ActiveSessions = NewGauge(
		"active_sessions",
		"Classifier sessions currently alive",
	)
}
