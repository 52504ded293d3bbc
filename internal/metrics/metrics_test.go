package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordScan(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(ScansTotal.WithLabelValues("universe", "success"))
	RecordScan("universe", "success", 1.5)
	assert.Equal(t, before+1, testutil.ToFloat64(ScansTotal.WithLabelValues("universe", "success")))
}

func TestRecordCandidate(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		accepted bool
		outcome  string
	}{
		{name: "accepted", accepted: true, outcome: "accepted"},
		{name: "rejected", accepted: false, outcome: "rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CandidatesTotal.WithLabelValues("mispricing", "overpriced", tt.outcome)
			before := testutil.ToFloat64(c)
			RecordCandidate("mispricing", "overpriced", 72, tt.accepted)
			assert.Equal(t, before+1, testutil.ToFloat64(c))
		})
	}
}

func TestUpdateActiveOpportunities(t *testing.T) {
	InitRegistry()

	UpdateActiveOpportunities(map[string]int{"AAPL": 3, "MSFT": 1})
	assert.Equal(t, 3.0, testutil.ToFloat64(ActiveOpportunities.WithLabelValues("AAPL")))

	UpdateActiveOpportunities(map[string]int{"MSFT": 2})
	assert.Equal(t, 1, testutil.CollectAndCount(ActiveOpportunities))
}

func TestOtherRecorders(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordContractsEvaluated(12)
		RecordSymbolSkipped("no_price")
		RecordPersistenceFailure("upsert")
		RecordVolatilityRefresh("success")
		RecordScheduledJob("scan", "skipped")
		RecordDetectorFailure("gamma_scalp", "panic")
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordScan("symbol", "success", 0.2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "options_edge_scans_total")
}
