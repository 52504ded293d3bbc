package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/options-edge/internal/config"
	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/strategy"
)

func TestPriceOption(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	var out bytes.Buffer

	err := priceOption(&out, priceInput{
		spot: 100, strike: 100, days: 365, vol: 0.2, kind: "call", rate: 0.05,
	}, now)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "price:          10.4506")
	assert.Contains(t, out.String(), "delta:          0.6368")
	assert.Contains(t, out.String(), "intrinsic:      0.0000")
	assert.Contains(t, out.String(), "volatility:     0.2000")
}

func TestPriceOptionSolvesImpliedVol(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	var out bytes.Buffer

	err := priceOption(&out, priceInput{
		spot: 100, strike: 100, days: 365, kind: "c", rate: 0.05, marketPrice: 10.4506,
	}, now)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "implied vol:    0.2000")
}

func TestPriceOptionRejects(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		in   priceInput
	}{
		{"zero spot", priceInput{strike: 100, days: 30, vol: 0.2, kind: "call"}},
		{"bad kind", priceInput{spot: 100, strike: 100, days: 30, vol: 0.2, kind: "straddle"}},
		{"bad expiry", priceInput{spot: 100, strike: 100, expiry: "next friday", vol: 0.2, kind: "put"}},
		{"unreachable price", priceInput{spot: 100, strike: 100, days: 30, kind: "call", marketPrice: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, priceOption(&bytes.Buffer{}, tt.in, now))
		})
	}
}

func TestPriceCommandUsesConfiguredRate(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{
		"price", "--spot", "100", "--strike", "100", "--days", "365", "--vol", "0.2",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", filepath.Join(dir, "missing.env"),
	})

	require.NoError(t, root.Execute())
	// default scanner rate is 0.05
	assert.Contains(t, out.String(), "price:          10.4506")
}

func TestPriceCommandRequiresSpot(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"price", "--strike", "100"})

	assert.Error(t, root.Execute())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPTIONS_EDGE_CLI_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("OPTIONS_EDGE_CLI_TEST_VALUE") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv("OPTIONS_EDGE_CLI_TEST_VALUE"))

	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, loadEnvFile(""))
}

func TestRegistryConfig(t *testing.T) {
	rc, err := registryConfig(config.ScannerConfig{
		MinScore:          55,
		Generations:       []string{"enhanced", "simple"},
		DetectorMinScores: map[string]float64{"mispricing": 60},
	})
	require.NoError(t, err)
	assert.Equal(t, []strategy.Generation{strategy.GenerationEnhanced, strategy.GenerationSimple}, rc.Generations)
	assert.Equal(t, 55.0, rc.MinScore)
	assert.Equal(t, 60.0, rc.DetectorMinScores["mispricing"])

	_, err = registryConfig(config.ScannerConfig{Generations: []string{"legacy"}})
	assert.Error(t, err)
}

func TestWriteCandidatesSortsSymbols(t *testing.T) {
	var out bytes.Buffer
	results := map[string][]*models.Candidate{
		"MSFT": {{ContractID: uuid.New(), ContractSymbol: "MSFT260320C00400000", Detector: "mispricing",
			OpportunityType: models.OpportunityUnderpriced, Score: 72.5, Description: "cheap"}},
		"AAPL": {{ContractID: uuid.New(), ContractSymbol: "AAPL260320P00150000", Detector: "iv_extreme",
			OpportunityType: models.OpportunityHighIV, Score: 81, Description: "rich"}},
	}

	require.NoError(t, writeCandidates(&out, results))

	text := out.String()
	assert.Contains(t, text, "SYMBOL")
	assert.Contains(t, text, "72.5")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("AAPL")), bytes.Index(out.Bytes(), []byte("MSFT")))
}

type cannedScanner struct {
	results map[string][]*models.Candidate
	errs    map[string]error
	seen    []string
}

func (c *cannedScanner) ScanSymbol(_ context.Context, symbol string, _ bool) ([]*models.Candidate, error) {
	c.seen = append(c.seen, symbol)
	if err := c.errs[symbol]; err != nil {
		return []*models.Candidate{}, err
	}
	return c.results[symbol], nil
}

func TestScanSymbolsSkipsFailingSymbols(t *testing.T) {
	msft := []*models.Candidate{{ContractID: uuid.New(), ContractSymbol: "MSFT260320C00400000", Score: 72}}
	sc := &cannedScanner{
		results: map[string][]*models.Candidate{"MSFT": msft},
		errs: map[string]error{
			"AAPL": errors.New("failed to list contracts for AAPL: connection reset"),
			"TSLA": models.ErrNoUnderlyingPrice,
		},
	}
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	results := scanSymbols(context.Background(), sc, []string{"AAPL", "TSLA", "MSFT", "IBM"}, false, quiet)

	assert.Equal(t, []string{"AAPL", "TSLA", "MSFT", "IBM"}, sc.seen)
	require.Len(t, results, 1)
	assert.Equal(t, msft, results["MSFT"])
	assert.NotContains(t, results, "IBM")
}

func TestScanSymbolsStopsOnCancel(t *testing.T) {
	sc := &cannedScanner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := scanSymbols(ctx, sc, []string{"AAPL", "MSFT"}, false, logrus.New())
	assert.Empty(t, results)
	assert.Empty(t, sc.seen)
}
