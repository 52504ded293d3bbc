package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/options-edge/internal/pricing"
)

// QuoteSnapshot is a point-in-time market quote for one option contract.
// Greeks are optional: a provider may supply them, otherwise they are derived
// from the implied volatility.
type QuoteSnapshot struct {
	ContractID        uuid.UUID `db:"contract_id" json:"contract_id"`
	Time              time.Time `db:"timestamp" json:"timestamp"`
	Bid               float64   `db:"bid" json:"bid"`
	Ask               float64   `db:"ask" json:"ask"`
	LastPrice         float64   `db:"last_price" json:"last_price"`
	Volume            int64     `db:"volume" json:"volume"`
	OpenInterest      *int64    `db:"open_interest" json:"open_interest"`
	ImpliedVolatility *float64  `db:"implied_volatility" json:"implied_volatility"`
	Delta             *float64  `db:"delta" json:"delta"`
	Gamma             *float64  `db:"gamma" json:"gamma"`
	Theta             *float64  `db:"theta" json:"theta"`
	Vega              *float64  `db:"vega" json:"vega"`
	Rho               *float64  `db:"rho" json:"rho"`
	BidAskSpread      *float64  `db:"bid_ask_spread" json:"bid_ask_spread"`
	SpreadPercentage  *float64  `db:"spread_percentage" json:"spread_percentage"`
	IntrinsicValue    *float64  `db:"intrinsic_value" json:"intrinsic_value"`
	TimeValue         *float64  `db:"time_value" json:"time_value"`
}

// SetBidAsk updates the quote sides and keeps the derived spread fields in sync
func (q *QuoteSnapshot) SetBidAsk(bid, ask float64) {
	q.Bid = bid
	q.Ask = ask
	q.RecomputeSpread()
}

// RefreshSpread recomputes the spread when both sides are quoted and otherwise
// keeps whatever the provider supplied.
func (q *QuoteSnapshot) RefreshSpread() {
	if q.Bid > 0 && q.Ask > 0 {
		q.RecomputeSpread()
	}
}

// RecomputeSpread derives spread and spread percentage from bid/ask.
// Both are cleared when either side is missing.
func (q *QuoteSnapshot) RecomputeSpread() {
	if q.Bid <= 0 || q.Ask <= 0 {
		q.BidAskSpread = nil
		q.SpreadPercentage = nil
		return
	}
	spread := q.Ask - q.Bid
	mid := (q.Bid + q.Ask) / 2
	pct := spread / mid * 100
	q.BidAskSpread = &spread
	q.SpreadPercentage = &pct
}

// GetMidPrice returns the bid/ask midpoint, falling back to the last trade
func (q *QuoteSnapshot) GetMidPrice() float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	return q.LastPrice
}

// UsableIV returns the implied volatility when it is present and positive
func (q *QuoteSnapshot) UsableIV() (float64, bool) {
	if q.ImpliedVolatility == nil || *q.ImpliedVolatility <= 0 {
		return 0, false
	}
	return *q.ImpliedVolatility, true
}

// GetOpenInterest returns open interest or 0 if unknown
func (q *QuoteSnapshot) GetOpenInterest() int64 {
	if q.OpenInterest == nil {
		return 0
	}
	return *q.OpenInterest
}

// ResolveGreeks fills missing Greeks from the Black-Scholes model. Non-zero
// values the provider supplied are kept as-is. Nothing is derived without a
// usable IV.
// It reports whether any Greek was computed.
func (q *QuoteSnapshot) ResolveGreeks(contract *ContractSpec, underlying float64, now time.Time, rate float64) bool {
	sigma, ok := q.UsableIV()
	if !ok || underlying <= 0 {
		return false
	}
	if supplied(q.Delta) && supplied(q.Gamma) && supplied(q.Theta) && supplied(q.Vega) && supplied(q.Rho) {
		return false
	}

	g := pricing.Greeks(underlying, contract.StrikePrice, contract.ExpiryDate, now, sigma, contract.Kind, rate)
	fill := func(dst **float64, v float64) {
		if !supplied(*dst) {
			val := v
			*dst = &val
		}
	}
	fill(&q.Delta, g.Delta)
	fill(&q.Gamma, g.Gamma)
	fill(&q.Theta, g.Theta)
	fill(&q.Vega, g.Vega)
	fill(&q.Rho, g.Rho)
	return true
}

// ResolveValues fills intrinsic and time value when absent
func (q *QuoteSnapshot) ResolveValues(contract *ContractSpec, underlying float64) {
	if q.IntrinsicValue == nil && underlying > 0 {
		iv := pricing.IntrinsicValue(underlying, contract.StrikePrice, contract.Kind)
		q.IntrinsicValue = &iv
	}
	if q.TimeValue == nil && q.IntrinsicValue != nil {
		if mid := q.GetMidPrice(); mid > 0 {
			tv := pricing.TimeValue(mid, *q.IntrinsicValue)
			q.TimeValue = &tv
		}
	}
}

// Clone returns a deep copy so enrichment never mutates shared snapshots
func (q *QuoteSnapshot) Clone() *QuoteSnapshot {
	c := *q
	c.OpenInterest = cloneInt(q.OpenInterest)
	c.ImpliedVolatility = cloneFloat(q.ImpliedVolatility)
	c.Delta = cloneFloat(q.Delta)
	c.Gamma = cloneFloat(q.Gamma)
	c.Theta = cloneFloat(q.Theta)
	c.Vega = cloneFloat(q.Vega)
	c.Rho = cloneFloat(q.Rho)
	c.BidAskSpread = cloneFloat(q.BidAskSpread)
	c.SpreadPercentage = cloneFloat(q.SpreadPercentage)
	c.IntrinsicValue = cloneFloat(q.IntrinsicValue)
	c.TimeValue = cloneFloat(q.TimeValue)
	return &c
}

func supplied(p *float64) bool {
	return p != nil && *p != 0
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}
