package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/options-edge/internal/models"
)

// PremiumSellDetector looks for rich premium to sell: elevated IV rank with
// meaningful daily decay.
type PremiumSellDetector struct {
	BaseDetector
	MinIVRank float64
	MinTheta  float64
	MinDelta  float64
	MinDays   float64
	MaxDays   float64
}

// NewPremiumSellDetector creates the detector with its default gates
func NewPremiumSellDetector() *PremiumSellDetector {
	return &PremiumSellDetector{
		BaseDetector: BaseDetector{NameValue: "premium_sell", GenerationValue: GenerationEnhanced},
		MinIVRank:    60,
		MinTheta:     0.02,
		MinDelta:     0.10,
		MinDays:      7,
		MaxDays:      90,
	}
}

// Detect evaluates one contract
func (d *PremiumSellDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Volatility == nil || in.Volatility.IVRank < d.MinIVRank {
		return nil, nil
	}

	q := in.Quote
	theta, okT := present(q.Theta)
	vega, okV := present(q.Vega)
	delta, okD := present(q.Delta)
	if !okT || !okV || !okD {
		return nil, nil
	}

	absTheta := math.Abs(theta)
	absDelta := math.Abs(delta)
	if absTheta < d.MinTheta || absDelta < d.MinDelta {
		return nil, nil
	}

	days := daysToExpiry(in)
	if !within(days, d.MinDays, d.MaxDays) {
		return nil, nil
	}

	rank := in.Volatility.IVRank
	score := 40.0
	if rank >= 80 {
		score += 25
	} else {
		score += Scaled(rank, d.MinIVRank, 80, 15)
	}
	score += Scaled(absTheta, 0, 0.10, 15)
	switch {
	case vega > 0.20:
		score += 10
	case vega > 0.10:
		score += 5
	}
	score += LiquidityBonus(in.Liquidity)

	mid := q.GetMidPrice()
	desc := fmt.Sprintf("PREMIUM SELL: %s (IV Rank: %.0f%%, Theta: $%.3f/day, Premium: $%.2f, Delta: %.2f)",
		describe(in), rank, absTheta, mid, absDelta)

	return d.NewCandidate(in, models.OpportunityPremiumSell, score, desc, map[string]float64{
		"iv_rank":   rank,
		"theta":     theta,
		"vega":      vega,
		"delta":     delta,
		"days":      days,
		"liquidity": in.Liquidity,
		"premium":   mid,
	}), nil
}
