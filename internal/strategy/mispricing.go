package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/pricing"
)

// MispricingDetector compares the market mid against the Black-Scholes value
// at the quote's own implied volatility.
type MispricingDetector struct {
	BaseDetector
	Threshold    float64
	MinLiquidity float64
}

// NewMispricingDetector creates the detector with a 15% threshold
func NewMispricingDetector() *MispricingDetector {
	return &MispricingDetector{
		BaseDetector: BaseDetector{NameValue: "mispricing", GenerationValue: GenerationEnhanced},
		Threshold:    0.15,
		MinLiquidity: 40,
	}
}

// Detect evaluates one contract
func (d *MispricingDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	sigma, ok := in.Quote.UsableIV()
	if !ok {
		return nil, nil
	}

	c := in.Contract
	t := pricing.TimeToExpiry(c.ExpiryDate, in.Now)
	theoretical := pricing.TheoreticalPrice(in.UnderlyingPrice, c.StrikePrice, t, sigma, c.Kind, in.RiskFreeRate)
	if theoretical <= 0 {
		return nil, nil
	}

	mid := in.Quote.GetMidPrice()
	if mid <= 0 {
		return nil, nil
	}

	pct := (mid - theoretical) / theoretical
	if math.Abs(pct) < d.Threshold {
		return nil, nil
	}
	if in.Liquidity < d.MinLiquidity {
		return nil, nil
	}

	score := 50.0
	score += Scaled(math.Abs(pct), 0, 0.30, 30)
	score += Scaled(in.Liquidity, 0, 100, 20)

	oppType, action := models.OpportunityUnderpriced, "BUY"
	if pct > 0 {
		oppType, action = models.OpportunityOverpriced, "SELL"
	}

	desc := fmt.Sprintf("MISPRICING (%s): %s is %.1f%% %s. Market: $%.2f, Fair: $%.2f",
		action, describe(in), math.Abs(pct)*100, oppType, mid, theoretical)

	return d.NewCandidate(in, oppType, score, desc, map[string]float64{
		"market_price":      mid,
		"theoretical_price": theoretical,
		"mispricing_pct":    pct,
		"implied_vol":       sigma,
		"liquidity":         in.Liquidity,
	}), nil
}
