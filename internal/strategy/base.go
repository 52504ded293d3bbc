package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/pricing"
)

// MaxScore caps every detector score
const MaxScore = 100.0

// BaseDetector provides identity and shared scoring helpers
type BaseDetector struct {
	NameValue       string
	GenerationValue Generation
}

// Name returns the detector name
func (b *BaseDetector) Name() string {
	return b.NameValue
}

// Generation returns the detector generation
func (b *BaseDetector) Generation() Generation {
	return b.GenerationValue
}

// NewCandidate builds a candidate stamped with the detector name
func (b *BaseDetector) NewCandidate(in Input, oppType string, score float64, description string, metadata map[string]float64) *models.Candidate {
	return &models.Candidate{
		ContractID:      in.Contract.ID,
		ContractSymbol:  in.Contract.ContractSymbol,
		Symbol:          in.Symbol,
		Detector:        b.NameValue,
		OpportunityType: oppType,
		Score:           CapScore(score),
		Description:     description,
		Metadata:        metadata,
		DetectedAt:      in.Now,
	}
}

// CapScore clamps a raw score to [0, MaxScore]
func CapScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return math.Min(score, MaxScore)
}

// Scaled maps v linearly from [floor, ceil] onto [0, points]
func Scaled(v, floor, ceil, points float64) float64 {
	if ceil == floor {
		return 0
	}
	s := (v - floor) / (ceil - floor) * points
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return math.Min(s, points)
}

// LiquidityBonus converts a liquidity score into at most 10 points
func LiquidityBonus(liquidity float64) float64 {
	return Scaled(liquidity, 0, 100, 10)
}

// present treats nil and zero as "not supplied"
func present(p *float64) (float64, bool) {
	if p == nil || *p == 0 {
		return 0, false
	}
	return *p, true
}

func daysToExpiry(in Input) float64 {
	return pricing.TimeToExpiry(in.Contract.ExpiryDate, in.Now) * 365
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// describe renders the "SYM CALL $150 exp 01/17" prefix shared by rationales
func describe(in Input) string {
	return fmt.Sprintf("%s %s", in.Symbol, in.Contract.Label())
}
