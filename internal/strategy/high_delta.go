package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/pricing"
)

// HighDeltaDetector finds deep contracts usable as stock replacement
type HighDeltaDetector struct {
	BaseDetector
	MinDelta     float64
	MinDays      float64
	MaxDays      float64
	MinLiquidity float64
}

// NewHighDeltaDetector creates the detector with its default gates
func NewHighDeltaDetector() *HighDeltaDetector {
	return &HighDeltaDetector{
		BaseDetector: BaseDetector{NameValue: "high_delta", GenerationValue: GenerationEnhanced},
		MinDelta:     0.65,
		MinDays:      20,
		MaxDays:      180,
		MinLiquidity: 30,
	}
}

// Detect evaluates one contract
func (d *HighDeltaDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	q := in.Quote
	delta, okD := present(q.Delta)
	theta, okT := present(q.Theta)
	if !okD || !okT {
		return nil, nil
	}

	absDelta := math.Abs(delta)
	if absDelta < d.MinDelta {
		return nil, nil
	}

	days := daysToExpiry(in)
	if !within(days, d.MinDays, d.MaxDays) {
		return nil, nil
	}
	if in.Liquidity < d.MinLiquidity {
		return nil, nil
	}

	ratio := absDelta / math.Abs(theta)

	score := 45.0
	score += Scaled(absDelta, d.MinDelta, 1.0, 20)
	switch {
	case ratio > 15:
		score += 15
	case ratio > 10:
		score += 10
	case ratio > 5:
		score += 5
	}
	score += LiquidityBonus(in.Liquidity)

	intrinsic := pricing.IntrinsicValue(in.UnderlyingPrice, in.Contract.StrikePrice, in.Contract.Kind)
	itmPct := 0.0
	if mid := q.GetMidPrice(); mid > 0 && intrinsic > 0 {
		itmPct = intrinsic / mid
	}
	switch {
	case itmPct > 0.7:
		score += 10
	case itmPct > 0.5:
		score += 5
	}

	desc := fmt.Sprintf("HIGH DELTA: %s (Delta: %.2f, D/T: %.1f, Stock: $%.2f)",
		describe(in), absDelta, ratio, in.UnderlyingPrice)

	return d.NewCandidate(in, models.OpportunityHighDelta, score, desc, map[string]float64{
		"delta":             delta,
		"theta":             theta,
		"delta_theta_ratio": ratio,
		"itm_pct":           itmPct,
		"days":              days,
		"liquidity":         in.Liquidity,
	}), nil
}
