package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/options-edge/internal/models"
)

// GammaScalpDetector favours near-the-money, short-dated contracts whose gamma
// is large relative to the theta paid to hold them.
type GammaScalpDetector struct {
	BaseDetector
	MinGamma      float64
	MinMoneyness  float64
	MaxMoneyness  float64
	MinDays       float64
	MaxDays       float64
	MinGammaTheta float64
	MinLiquidity  float64
}

// NewGammaScalpDetector creates the detector with its default gates
func NewGammaScalpDetector() *GammaScalpDetector {
	return &GammaScalpDetector{
		BaseDetector:  BaseDetector{NameValue: "gamma_scalp", GenerationValue: GenerationEnhanced},
		MinGamma:      0.01,
		MinMoneyness:  0.90,
		MaxMoneyness:  1.10,
		MinDays:       7,
		MaxDays:       45,
		MinGammaTheta: 0.5,
		MinLiquidity:  50,
	}
}

// Detect evaluates one contract
func (d *GammaScalpDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	q := in.Quote
	gamma, okG := present(q.Gamma)
	theta, okT := present(q.Theta)
	_, okD := present(q.Delta)
	if !okG || !okT || !okD {
		return nil, nil
	}

	absGamma := math.Abs(gamma)
	if absGamma < d.MinGamma {
		return nil, nil
	}

	moneyness := in.Contract.Moneyness(in.UnderlyingPrice)
	if !within(moneyness, d.MinMoneyness, d.MaxMoneyness) {
		return nil, nil
	}

	days := daysToExpiry(in)
	if !within(days, d.MinDays, d.MaxDays) {
		return nil, nil
	}

	ratio := absGamma / math.Abs(theta)
	if ratio < d.MinGammaTheta {
		return nil, nil
	}
	if in.Liquidity < d.MinLiquidity {
		return nil, nil
	}

	score := 45.0
	score += Scaled(absGamma, 0, 0.05, 20)
	score += math.Max(15*(1-math.Abs(1-moneyness)/0.10), 0)
	score += Scaled(ratio, 0, 2, 10)
	score += LiquidityBonus(in.Liquidity)

	desc := fmt.Sprintf("GAMMA SCALP: %s (Gamma: %.3f, G/T Ratio: %.1f, Stock: $%.2f, Moneyness: %.2f%%)",
		describe(in), absGamma, ratio, in.UnderlyingPrice, moneyness*100)

	return d.NewCandidate(in, models.OpportunityGammaScalp, score, desc, map[string]float64{
		"gamma":             gamma,
		"theta":             theta,
		"gamma_theta_ratio": ratio,
		"moneyness":         moneyness,
		"days":              days,
		"liquidity":         in.Liquidity,
	}), nil
}
