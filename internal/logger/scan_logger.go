package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ScanLogger provides dedicated logging for scan operations.
type ScanLogger struct {
	*logrus.Entry
}

// NewScanLogger creates a new scan logger.
func NewScanLogger(baseLogger *logrus.Logger) *ScanLogger {
	return &ScanLogger{
		Entry: baseLogger.WithField("component", "scanner"),
	}
}

// LogSymbolScan logs a completed per-symbol scan.
func (sl *ScanLogger) LogSymbolScan(symbol string, underlying float64, contracts, evaluated, candidates int, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"symbol":              symbol,
		"underlying_price":    underlying,
		"contracts":           contracts,
		"contracts_evaluated": evaluated,
		"candidates":          candidates,
		"duration_ms":         duration.Milliseconds(),
	}).Info("Symbol scan completed")
}

// LogSkip logs a symbol or contract skipped for missing data.
func (sl *ScanLogger) LogSkip(symbol, contractSymbol, reason string, err error) {
	entry := sl.WithFields(logrus.Fields{
		"symbol": symbol,
		"reason": reason,
	})
	if contractSymbol != "" {
		entry = entry.WithField("contract_symbol", contractSymbol)
	}
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Scan unit skipped")
}

// LogCandidate logs an accepted candidate at debug level.
func (sl *ScanLogger) LogCandidate(symbol, contractSymbol, detector, opportunityType string, score float64) {
	sl.WithFields(logrus.Fields{
		"symbol":           symbol,
		"contract_symbol":  contractSymbol,
		"detector":         detector,
		"opportunity_type": opportunityType,
		"score":            score,
	}).Debug("Opportunity candidate accepted")
}

// LogDetectorFailure logs a detector error or recovered panic.
func (sl *ScanLogger) LogDetectorFailure(detector, contractSymbol string, err error) {
	sl.WithFields(logrus.Fields{
		"detector":        detector,
		"contract_symbol": contractSymbol,
	}).WithError(err).Error("Detector failed")
}

// LogUniverseScan logs a completed universe scan.
func (sl *ScanLogger) LogUniverseScan(symbols, scanned, candidates int, persisted bool, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"symbols":     symbols,
		"scanned":     scanned,
		"candidates":  candidates,
		"persisted":   persisted,
		"duration_ms": duration.Milliseconds(),
	}).Info("Universe scan completed")
}
