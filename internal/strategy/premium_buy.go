package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/options-edge/internal/models"
)

// PremiumBuyDetector looks for cheap volatility to own: depressed IV rank,
// enough vega to benefit from expansion and little decay.
type PremiumBuyDetector struct {
	BaseDetector
	MaxIVRank float64
	MinVega   float64
	MinDays   float64
	MaxDays   float64
}

// NewPremiumBuyDetector creates the detector with its default gates
func NewPremiumBuyDetector() *PremiumBuyDetector {
	return &PremiumBuyDetector{
		BaseDetector: BaseDetector{NameValue: "premium_buy", GenerationValue: GenerationEnhanced},
		MaxIVRank:    40,
		MinVega:      0.05,
		MinDays:      20,
		MaxDays:      120,
	}
}

// Detect evaluates one contract
func (d *PremiumBuyDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Volatility == nil || in.Volatility.IVRank > d.MaxIVRank {
		return nil, nil
	}

	q := in.Quote
	theta, okT := present(q.Theta)
	vega, okV := present(q.Vega)
	delta, okD := present(q.Delta)
	if !okT || !okV || !okD {
		return nil, nil
	}
	if vega < d.MinVega {
		return nil, nil
	}

	days := daysToExpiry(in)
	if !within(days, d.MinDays, d.MaxDays) {
		return nil, nil
	}

	rank := in.Volatility.IVRank
	absTheta := math.Abs(theta)

	score := 40.0
	if rank <= 20 {
		score += 25
	} else {
		score += Scaled(d.MaxIVRank-rank, 0, 20, 15)
	}
	score += Scaled(vega, 0, 0.30, 15)
	switch {
	case absTheta < 0.02:
		score += 10
	case absTheta < 0.05:
		score += 5
	}
	score += LiquidityBonus(in.Liquidity)

	mid := q.GetMidPrice()
	desc := fmt.Sprintf("PREMIUM BUY: %s (IV Rank: %.0f%%, Vega: %.2f, Cost: $%.2f, Delta: %.2f)",
		describe(in), rank, vega, mid, math.Abs(delta))

	return d.NewCandidate(in, models.OpportunityPremiumBuy, score, desc, map[string]float64{
		"iv_rank":   rank,
		"theta":     theta,
		"vega":      vega,
		"delta":     delta,
		"days":      days,
		"liquidity": in.Liquidity,
		"cost":      mid,
	}), nil
}
