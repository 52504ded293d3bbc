// Package metrics provides centralized Prometheus metrics registry for the scanner.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "options_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Total number of scans by scope and outcome",
	}, []string{"scope", "outcome"})
	ContractsEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contracts_evaluated_total",
		Help:      "Total number of contracts run through the detectors",
	})
	SymbolsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "symbols_skipped_total",
		Help:      "Total number of symbols skipped during scans by reason",
	}, []string{"reason"})
	PersistenceFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Total number of failed opportunity writes by operation",
	}, []string{"operation"})
	VolatilityRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "volatility_refresh_total",
		Help:      "Total number of volatility refreshes by outcome",
	}, []string{"outcome"})
	ScheduledJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_jobs_total",
		Help:      "Total number of scheduler job triggers by job and outcome",
	}, []string{"job", "outcome"})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of scans in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"scope"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ScansTotal)
		registry.MustRegister(ContractsEvaluatedTotal)
		registry.MustRegister(SymbolsSkippedTotal)
		registry.MustRegister(PersistenceFailuresTotal)
		registry.MustRegister(VolatilityRefreshTotal)
		registry.MustRegister(ScheduledJobsTotal)
		registry.MustRegister(ScanDuration)

		// detector metrics
		registry.MustRegister(CandidatesTotal)
		registry.MustRegister(DetectorFailuresTotal)
		registry.MustRegister(CandidateScore)
		registry.MustRegister(ActiveOpportunities)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScan records a completed scan.
func RecordScan(scope, outcome string, durationSeconds float64) {
	ScansTotal.WithLabelValues(scope, outcome).Inc()
	ScanDuration.WithLabelValues(scope).Observe(durationSeconds)
}

// RecordContractsEvaluated adds to the evaluated contracts counter.
func RecordContractsEvaluated(n int) {
	ContractsEvaluatedTotal.Add(float64(n))
}

// RecordSymbolSkipped records a skipped symbol.
func RecordSymbolSkipped(reason string) {
	SymbolsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordPersistenceFailure records a failed write.
func RecordPersistenceFailure(operation string) {
	PersistenceFailuresTotal.WithLabelValues(operation).Inc()
}

// RecordVolatilityRefresh records a volatility refresh.
func RecordVolatilityRefresh(outcome string) {
	VolatilityRefreshTotal.WithLabelValues(outcome).Inc()
}

// RecordScheduledJob records a scheduler trigger.
func RecordScheduledJob(job, outcome string) {
	ScheduledJobsTotal.WithLabelValues(job, outcome).Inc()
}
