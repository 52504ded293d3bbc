package strategy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/pricing"
)

var testNow = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return models.Float64Ptr(v) }

func newInput(kind pricing.OptionKind, strike float64, days int, underlying float64) Input {
	return Input{
		Symbol: "AAPL",
		Contract: &models.ContractSpec{
			ID:             uuid.New(),
			Symbol:         "AAPL",
			ContractSymbol: "AAPL260401P00095000",
			StrikePrice:    strike,
			Kind:           kind,
			ExpiryDate:     testNow.AddDate(0, 0, days),
			Active:         true,
		},
		Quote:           &models.QuoteSnapshot{Time: testNow},
		UnderlyingPrice: underlying,
		RiskFreeRate:    pricing.DefaultRiskFreeRate,
		Now:             testNow,
	}
}

func withRank(in Input, rank float64) Input {
	in.Volatility = &models.VolatilityRecord{Symbol: in.Symbol, IVRank: rank, IVPercentile: rank, CurrentIV: 0.3}
	return in
}

func TestPremiumSellDetector(t *testing.T) {
	d := NewPremiumSellDetector()

	base := func() Input {
		in := withRank(newInput(pricing.Put, 95, 30, 100), 85)
		in.Quote.SetBidAsk(2.00, 2.10)
		in.Quote.Theta, in.Quote.Vega, in.Quote.Delta = f(-0.05), f(0.15), f(-0.30)
		in.Liquidity = 80
		return in
	}

	c, err := d.Detect(base())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityPremiumSell, c.OpportunityType)
	assert.Equal(t, "premium_sell", c.Detector)
	// 40 + 25 (rank>=80) + 7.5 theta + 5 vega tier + 8 liquidity
	assert.InDelta(t, 85.5, c.Score, 1e-6)
	assert.Contains(t, c.Description, "PREMIUM SELL: AAPL PUT $95 exp 04/01")
	assert.Contains(t, c.Description, "Theta: $0.050/day")
	assert.Equal(t, testNow, c.DetectedAt)

	in := base()
	in.Volatility.IVRank = 70
	c, err = d.Detect(in)
	require.NoError(t, err)
	assert.InDelta(t, 40+7.5+7.5+5+8, c.Score, 1e-6)

	rejects := map[string]func(*Input){
		"rank below 60": func(in *Input) { in.Volatility.IVRank = 59 },
		"no volatility": func(in *Input) { in.Volatility = nil },
		"missing theta": func(in *Input) { in.Quote.Theta = nil },
		"zero vega":     func(in *Input) { in.Quote.Vega = f(0) },
		"small theta":   func(in *Input) { in.Quote.Theta = f(-0.01) },
		"small delta":   func(in *Input) { in.Quote.Delta = f(0.05) },
		"too short":     func(in *Input) { in.Contract.ExpiryDate = testNow.AddDate(0, 0, 5) },
		"too long":      func(in *Input) { in.Contract.ExpiryDate = testNow.AddDate(0, 0, 100) },
	}
	for name, mutate := range rejects {
		t.Run(name, func(t *testing.T) {
			in := base()
			mutate(&in)
			c, err := d.Detect(in)
			require.NoError(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestPremiumBuyDetector(t *testing.T) {
	d := NewPremiumBuyDetector()

	in := withRank(newInput(pricing.Call, 105, 60, 100), 10)
	in.Quote.SetBidAsk(3.00, 3.10)
	in.Quote.Theta, in.Quote.Vega, in.Quote.Delta = f(-0.01), f(0.24), f(0.50)
	in.Liquidity = 70

	c, err := d.Detect(in)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityPremiumBuy, c.OpportunityType)
	// 40 + 25 + 12 vega + 10 low theta + 7 liquidity
	assert.InDelta(t, 94, c.Score, 1e-6)

	in.Volatility.IVRank = 30
	c, err = d.Detect(in)
	require.NoError(t, err)
	assert.InDelta(t, 76.5, c.Score, 1e-6)

	in.Volatility.IVRank = 45
	c, err = d.Detect(in)
	require.NoError(t, err)
	assert.Nil(t, c)

	in.Volatility.IVRank = 10
	in.Quote.Vega = f(0.04)
	c, err = d.Detect(in)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestGammaScalpDetector(t *testing.T) {
	d := NewGammaScalpDetector()

	base := func() Input {
		in := newInput(pricing.Call, 100, 30, 102)
		in.Quote.SetBidAsk(2.50, 2.60)
		in.Quote.Gamma, in.Quote.Theta, in.Quote.Delta = f(0.04), f(-0.05), f(0.55)
		in.Liquidity = 90
		return in
	}

	c, err := d.Detect(base())
	require.NoError(t, err)
	require.NotNil(t, c)
	// 45 + 16 gamma + 12 ATM + 4 ratio + 9 liquidity
	assert.InDelta(t, 86, c.Score, 1e-6)
	assert.InDelta(t, 0.8, c.Metadata["gamma_theta_ratio"], 1e-9)

	in := base()
	in.Liquidity = 40
	c, _ = d.Detect(in)
	assert.Nil(t, c)

	in = base()
	in.UnderlyingPrice = 120
	c, _ = d.Detect(in)
	assert.Nil(t, c)

	in = base()
	in.Quote.Theta = f(-0.10)
	c, _ = d.Detect(in)
	assert.Nil(t, c, "gamma/theta ratio 0.4 is below 0.5")

	in = base()
	in.Quote.Delta = nil
	c, _ = d.Detect(in)
	assert.Nil(t, c)
}

func mispricingInput(markup float64) Input {
	in := newInput(pricing.Call, 105, 182, 100)
	in.Quote.ImpliedVolatility = f(0.25)
	t := pricing.TimeToExpiry(in.Contract.ExpiryDate, testNow)
	theo := pricing.TheoreticalPrice(100, 105, t, 0.25, pricing.Call, pricing.DefaultRiskFreeRate)
	mid := theo * markup
	in.Quote.SetBidAsk(mid-0.01, mid+0.01)
	in.Liquidity = 60
	return in
}

func TestMispricingDetectorOverpriced(t *testing.T) {
	d := NewMispricingDetector()

	c, err := d.Detect(mispricingInput(1.25))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityOverpriced, c.OpportunityType)
	// 50 + 30*(0.25/0.30) + 60/5
	assert.InDelta(t, 87, c.Score, 1e-6)
	assert.Contains(t, c.Description, "MISPRICING (SELL)")
	assert.Contains(t, c.Description, "25.0% overpriced")
}

func TestMispricingDetectorUnderpriced(t *testing.T) {
	d := NewMispricingDetector()

	c, err := d.Detect(mispricingInput(0.80))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityUnderpriced, c.OpportunityType)
	assert.InDelta(t, 82, c.Score, 1e-6)
	assert.Contains(t, c.Description, "MISPRICING (BUY)")
}

func TestMispricingDetectorRejects(t *testing.T) {
	d := NewMispricingDetector()

	c, _ := d.Detect(mispricingInput(1.10))
	assert.Nil(t, c, "10% is under the threshold")

	in := mispricingInput(1.25)
	in.Liquidity = 30
	c, _ = d.Detect(in)
	assert.Nil(t, c)

	in = mispricingInput(1.25)
	in.Quote.ImpliedVolatility = nil
	c, _ = d.Detect(in)
	assert.Nil(t, c)

	in = mispricingInput(1.25)
	in.Quote.ImpliedVolatility = f(-0.2)
	c, _ = d.Detect(in)
	assert.Nil(t, c)
}

func TestHighDeltaDetector(t *testing.T) {
	d := NewHighDeltaDetector()

	in := newInput(pricing.Call, 80, 60, 100)
	in.Quote.SetBidAsk(20.50, 21.50)
	in.Quote.Delta, in.Quote.Theta = f(0.85), f(-0.04)
	in.Liquidity = 50

	c, err := d.Detect(in)
	require.NoError(t, err)
	require.NotNil(t, c)
	// 45 + 0.2/0.35*20 + 15 (D/T 21.25) + 5 liquidity + 10 deep ITM
	assert.InDelta(t, 45+0.2/0.35*20+15+5+10, c.Score, 1e-6)

	in.Quote.Delta = f(0.60)
	c, _ = d.Detect(in)
	assert.Nil(t, c)

	in.Quote.Delta = f(0.85)
	in.Contract.ExpiryDate = testNow.AddDate(0, 0, 10)
	c, _ = d.Detect(in)
	assert.Nil(t, c)
}

func TestIVExtremeDetector(t *testing.T) {
	d := NewIVExtremeDetector()

	in := withRank(newInput(pricing.Put, 95, 30, 100), 90)
	in.Quote.Theta, in.Quote.Vega = f(-0.05), f(0.15)

	c, err := d.Detect(in)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityHighIV, c.OpportunityType)
	assert.InDelta(t, 62.5, c.Score, 1e-6)

	in.Volatility.IVRank = 10
	c, err = d.Detect(in)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityLowIV, c.OpportunityType)
	assert.InDelta(t, 62.5, c.Score, 1e-6)

	in.Volatility.IVRank = 50
	c, _ = d.Detect(in)
	assert.Nil(t, c)
}

func TestVolumeAnomalyDetector(t *testing.T) {
	d := NewVolumeAnomalyDetector()

	in := newInput(pricing.Call, 100, 30, 100)
	in.Quote.Volume = 300
	in.Quote.OpenInterest = models.Int64Ptr(1200)
	in.AverageVolume = 100

	c, err := d.Detect(in)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityUnusualVolume, c.OpportunityType)
	assert.InDelta(t, 75, c.Score, 1e-6)

	in.Quote.Volume = 120
	c, _ = d.Detect(in)
	assert.Nil(t, c)

	in.Quote.Volume = 300
	in.AverageVolume = 0
	c, _ = d.Detect(in)
	assert.Nil(t, c)
}

func TestTimeValueDecayDetector(t *testing.T) {
	d := NewTimeValueDecayDetector()

	in := newInput(pricing.Call, 100, 20, 101)
	in.Quote.SetBidAsk(3.90, 4.10)
	in.Quote.Theta = f(-0.08)

	c, err := d.Detect(in)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, models.OpportunityHighTimeValue, c.OpportunityType)
	// 45 + 15 (75% time value) + 12 theta
	assert.InDelta(t, 72, c.Score, 1e-6)

	in.UnderlyingPrice = 110
	c, _ = d.Detect(in)
	assert.Nil(t, c, "deep ITM quote has no time value")

	in.UnderlyingPrice = 101
	in.Contract.ExpiryDate = testNow.AddDate(0, 0, 40)
	c, _ = d.Detect(in)
	assert.Nil(t, c)
}

func TestDetectRequiresContractAndQuote(t *testing.T) {
	for _, d := range AllDetectors() {
		_, err := d.Detect(Input{Now: testNow})
		assert.ErrorIs(t, err, ErrIncompleteInput, d.Name())
	}
}

func TestScoresNeverExceedMax(t *testing.T) {
	in := withRank(newInput(pricing.Put, 95, 30, 100), 100)
	in.Quote.SetBidAsk(2.00, 2.02)
	in.Quote.Theta, in.Quote.Vega, in.Quote.Delta = f(-0.50), f(0.90), f(-0.45)
	in.Liquidity = 100

	c, err := NewPremiumSellDetector().Detect(in)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.LessOrEqual(t, c.Score, MaxScore)
}

func TestScaled(t *testing.T) {
	assert.Equal(t, 0.0, Scaled(-1, 0, 1, 10))
	assert.InDelta(t, 5.0, Scaled(0.5, 0, 1, 10), 1e-12)
	assert.Equal(t, 10.0, Scaled(3, 0, 1, 10))
	assert.Equal(t, 0.0, Scaled(3, 1, 1, 10))
}
