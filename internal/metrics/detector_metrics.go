package metrics

import "github.com/prometheus/client_golang/prometheus"

// Detector counter vectors
var (
	CandidatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_total",
		Help:      "Total number of candidates by detector and whether they cleared the minimum score",
	}, []string{"detector", "opportunity_type", "outcome"})

	DetectorFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detector_failures_total",
		Help:      "Total number of detector errors and panics",
	}, []string{"detector", "kind"})
)

// Detector histogram vectors
var (
	CandidateScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "candidate_score",
		Help:      "Scores of emitted candidates",
		Buckets:   []float64{40, 50, 60, 70, 80, 90, 100},
	}, []string{"detector"})
)

// Opportunity gauge vectors
var (
	ActiveOpportunities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_opportunities",
		Help:      "Number of active opportunities per symbol",
	}, []string{"symbol"})
)

// RecordCandidate records a detector candidate.
func RecordCandidate(detector, opportunityType string, score float64, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	CandidatesTotal.WithLabelValues(detector, opportunityType, outcome).Inc()
	CandidateScore.WithLabelValues(detector).Observe(score)
}

// RecordDetectorFailure records a detector error or panic.
func RecordDetectorFailure(detector, kind string) {
	DetectorFailuresTotal.WithLabelValues(detector, kind).Inc()
}

// UpdateActiveOpportunities replaces the per-symbol active opportunity gauge.
func UpdateActiveOpportunities(counts map[string]int) {
	ActiveOpportunities.Reset()
	for symbol, n := range counts {
		ActiveOpportunities.WithLabelValues(symbol).Set(float64(n))
	}
}
