package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/options-edge/internal/pricing"
)

func testContract(kind pricing.OptionKind, strike float64, expiry time.Time) *ContractSpec {
	return &ContractSpec{
		ID:             uuid.New(),
		Symbol:         "AAPL",
		ContractSymbol: "AAPL260320C00150000",
		StrikePrice:    strike,
		Kind:           kind,
		ExpiryDate:     expiry,
	}
}

func TestSetBidAskRecomputesSpread(t *testing.T) {
	q := &QuoteSnapshot{}
	q.SetBidAsk(1.90, 2.10)

	require.NotNil(t, q.BidAskSpread)
	require.NotNil(t, q.SpreadPercentage)
	assert.InDelta(t, 0.20, *q.BidAskSpread, 1e-9)
	assert.InDelta(t, 10.0, *q.SpreadPercentage, 1e-9)

	q.SetBidAsk(0, 2.10)
	assert.Nil(t, q.BidAskSpread)
	assert.Nil(t, q.SpreadPercentage)
}

func TestRefreshSpreadKeepsProviderValues(t *testing.T) {
	q := &QuoteSnapshot{Ask: 2.0, BidAskSpread: Float64Ptr(0.15)}
	q.RefreshSpread()
	assert.Equal(t, 0.15, *q.BidAskSpread)

	q.Bid = 1.5
	q.RefreshSpread()
	assert.InDelta(t, 0.5, *q.BidAskSpread, 1e-9)
}

func TestGetMidPrice(t *testing.T) {
	assert.Equal(t, 2.0, (&QuoteSnapshot{Bid: 1.9, Ask: 2.1, LastPrice: 5}).GetMidPrice())
	assert.Equal(t, 5.0, (&QuoteSnapshot{Ask: 2.1, LastPrice: 5}).GetMidPrice())
}

func TestUsableIV(t *testing.T) {
	_, ok := (&QuoteSnapshot{}).UsableIV()
	assert.False(t, ok)
	_, ok = (&QuoteSnapshot{ImpliedVolatility: Float64Ptr(0)}).UsableIV()
	assert.False(t, ok)

	iv, ok := (&QuoteSnapshot{ImpliedVolatility: Float64Ptr(0.3)}).UsableIV()
	assert.True(t, ok)
	assert.Equal(t, 0.3, iv)
}

func TestResolveGreeks(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	contract := testContract(pricing.Call, 100, now.AddDate(1, 0, 0))

	t.Run("fills missing greeks and keeps supplied ones", func(t *testing.T) {
		q := &QuoteSnapshot{ImpliedVolatility: Float64Ptr(0.2), Delta: Float64Ptr(0.9)}
		require.True(t, q.ResolveGreeks(contract, 100, now, 0.05))

		assert.Equal(t, 0.9, *q.Delta)
		require.NotNil(t, q.Gamma)
		require.NotNil(t, q.Vega)
		assert.Greater(t, *q.Gamma, 0.0)
		assert.Less(t, *q.Theta, 0.0)
	})

	t.Run("zero values count as missing", func(t *testing.T) {
		q := &QuoteSnapshot{ImpliedVolatility: Float64Ptr(0.2), Delta: Float64Ptr(0)}
		require.True(t, q.ResolveGreeks(contract, 100, now, 0.05))
		assert.InDelta(t, 0.6368, *q.Delta, 1e-3)
	})

	t.Run("nothing without iv", func(t *testing.T) {
		q := &QuoteSnapshot{}
		assert.False(t, q.ResolveGreeks(contract, 100, now, 0.05))
		assert.Nil(t, q.Delta)
	})

	t.Run("nothing when all supplied", func(t *testing.T) {
		q := &QuoteSnapshot{
			ImpliedVolatility: Float64Ptr(0.2),
			Delta:             Float64Ptr(0.5),
			Gamma:             Float64Ptr(0.02),
			Theta:             Float64Ptr(-0.01),
			Vega:              Float64Ptr(0.3),
			Rho:               Float64Ptr(0.1),
		}
		assert.False(t, q.ResolveGreeks(contract, 100, now, 0.05))
		assert.Equal(t, 0.5, *q.Delta)
	})
}

func TestResolveValues(t *testing.T) {
	contract := testContract(pricing.Put, 110, time.Now().AddDate(0, 1, 0))
	q := &QuoteSnapshot{Bid: 11.5, Ask: 12.5}

	q.ResolveValues(contract, 100)
	require.NotNil(t, q.IntrinsicValue)
	require.NotNil(t, q.TimeValue)
	assert.Equal(t, 10.0, *q.IntrinsicValue)
	assert.Equal(t, 2.0, *q.TimeValue)
}

func TestCloneIsDeep(t *testing.T) {
	q := &QuoteSnapshot{ImpliedVolatility: Float64Ptr(0.25), OpenInterest: Int64Ptr(100)}
	c := q.Clone()

	*c.ImpliedVolatility = 0.5
	*c.OpenInterest = 1
	c.Delta = Float64Ptr(0.4)

	assert.Equal(t, 0.25, *q.ImpliedVolatility)
	assert.Equal(t, int64(100), q.GetOpenInterest())
	assert.Nil(t, q.Delta)
}

func TestContractValidate(t *testing.T) {
	expiry := time.Now().AddDate(0, 1, 0)
	require.NoError(t, testContract(pricing.Call, 150, expiry).Validate())

	bad := testContract(pricing.Call, 0, expiry)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidContract)

	bad = testContract("straddle", 150, expiry)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidContract)

	bad = testContract(pricing.Put, 150, expiry)
	bad.Symbol = ""
	assert.ErrorIs(t, bad.Validate(), ErrInvalidContract)
}

func TestContractHelpers(t *testing.T) {
	expiry := time.Date(2026, 1, 17, 21, 0, 0, 0, time.UTC)
	call := testContract(pricing.Call, 150, expiry)
	put := testContract(pricing.Put, 150, expiry)

	assert.Equal(t, "CALL $150 exp 01/17", call.Label())
	assert.Equal(t, "PUT $150 exp 01/17", put.Label())

	assert.InDelta(t, 1.1, call.Moneyness(165), 1e-9)
	assert.InDelta(t, 150.0/165.0, put.Moneyness(165), 1e-9)
	assert.Equal(t, 0.0, call.Moneyness(0))

	assert.False(t, call.IsExpired(expiry.Add(-time.Minute)))
	assert.True(t, call.IsExpired(expiry))
}

func TestCandidateConversion(t *testing.T) {
	detected := time.Now()
	c := &Candidate{
		ContractID:      uuid.New(),
		OpportunityType: OpportunityPremiumSell,
		Score:           74.256,
		Description:     "rich premium",
		DetectedAt:      detected,
	}

	assert.Equal(t, c.ContractID.String()+":premium_sell", c.Key())

	opp := c.ToOpportunity()
	assert.True(t, opp.Active)
	assert.Equal(t, c.ContractID, opp.ContractID)
	assert.Equal(t, c.Score, opp.Score)
	assert.Equal(t, detected, opp.UpdatedAt)
	assert.NotEqual(t, uuid.Nil, opp.ID)
}

func TestLatestVolatility(t *testing.T) {
	assert.Nil(t, LatestVolatility(nil))

	newest := &VolatilityRecord{Symbol: "AAPL", CurrentIV: 0.3}
	older := &VolatilityRecord{Symbol: "AAPL", CurrentIV: 0.2}
	assert.Same(t, newest, LatestVolatility([]*VolatilityRecord{newest, older}))
}
