// Package strategy holds the opportunity detectors. Each detector looks at a
// single contract quote in the context of its underlying and volatility
// history and either rejects it or emits a scored candidate.
package strategy

import (
	"errors"
	"time"

	"github.com/yourusername/options-edge/internal/models"
)

// Generation groups detectors that were tuned together
type Generation string

const (
	// GenerationEnhanced is the Greek-aware detector set and the default.
	GenerationEnhanced Generation = "enhanced"
	// GenerationSimple is the earlier threshold-based set.
	GenerationSimple Generation = "simple"
)

// ParseGeneration validates a generation name
func ParseGeneration(s string) (Generation, error) {
	switch Generation(s) {
	case GenerationEnhanced, GenerationSimple:
		return Generation(s), nil
	}
	return "", errors.New("unknown detector generation: " + s)
}

// Detector evaluates one contract and returns a candidate or nil
type Detector interface {
	Name() string
	Generation() Generation
	Detect(in Input) (*models.Candidate, error)
}

// Input provides a detector with everything it may look at for one contract.
// Greeks on Quote are already resolved by the caller.
type Input struct {
	Symbol          string
	Contract        *models.ContractSpec
	Quote           *models.QuoteSnapshot
	UnderlyingPrice float64
	Volatility      *models.VolatilityRecord
	AverageVolume   float64
	Liquidity       float64
	RiskFreeRate    float64
	Now             time.Time
}

// ErrIncompleteInput is returned when contract or quote is missing
var ErrIncompleteInput = errors.New("detector input requires contract and quote")

// Validate checks the fields every detector depends on
func (in Input) Validate() error {
	if in.Contract == nil || in.Quote == nil {
		return ErrIncompleteInput
	}
	return nil
}
