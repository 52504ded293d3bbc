package pricing

import (
	"math"
	"time"
)

// GreekSet bundles the five first-order sensitivities.
type GreekSet struct {
	Delta        float64 `json:"delta"`
	Gamma        float64 `json:"gamma"`
	Theta        float64 `json:"theta"`
	Vega         float64 `json:"vega"`
	Rho          float64 `json:"rho"`
	TimeToExpiry float64 `json:"time_to_expiry"`
}

// Delta is dPrice/dSpot. Calls are in [0,1], puts in [-1,0].
func Delta(s, k, t, sigma float64, kind OptionKind, r float64) float64 {
	if !validInputs(s, k, t, sigma) {
		return 0
	}
	d1, _ := d1d2(s, k, t, sigma, r)
	if kind.IsCall() {
		return finite(normCDF(d1))
	}
	return finite(normCDF(d1) - 1)
}

// Gamma is dDelta/dSpot, identical for calls and puts.
func Gamma(s, k, t, sigma, r float64) float64 {
	if !validInputs(s, k, t, sigma) {
		return 0
	}
	d1, _ := d1d2(s, k, t, sigma, r)
	return finite(normPDF(d1) / (s * sigma * math.Sqrt(t)))
}

// Theta is the time decay per calendar day.
func Theta(s, k, t, sigma float64, kind OptionKind, r float64) float64 {
	if !validInputs(s, k, t, sigma) {
		return 0
	}
	d1, d2 := d1d2(s, k, t, sigma, r)
	decay := -s * normPDF(d1) * sigma / (2 * math.Sqrt(t))
	carry := r * k * math.Exp(-r*t)

	var theta float64
	if kind.IsCall() {
		theta = decay - carry*normCDF(d2)
	} else {
		theta = decay + carry*normCDF(-d2)
	}
	return finite(theta / daysPerYear)
}

// Vega is the price change per 1 volatility point, identical for calls and puts.
func Vega(s, k, t, sigma, r float64) float64 {
	if !validInputs(s, k, t, sigma) {
		return 0
	}
	d1, _ := d1d2(s, k, t, sigma, r)
	return finite(s * normPDF(d1) * math.Sqrt(t) / 100)
}

// Rho is the price change per 1 point of the risk-free rate.
func Rho(s, k, t, sigma float64, kind OptionKind, r float64) float64 {
	if !validInputs(s, k, t, sigma) {
		return 0
	}
	_, d2 := d1d2(s, k, t, sigma, r)
	discounted := k * t * math.Exp(-r*t)

	var rho float64
	if kind.IsCall() {
		rho = discounted * normCDF(d2)
	} else {
		rho = -discounted * normCDF(-d2)
	}
	return finite(rho / 100)
}

// Greeks computes all sensitivities for a contract expiring at expiry.
func Greeks(s, k float64, expiry, now time.Time, sigma float64, kind OptionKind, r float64) GreekSet {
	t := TimeToExpiry(expiry, now)
	return GreekSet{
		Delta:        Delta(s, k, t, sigma, kind, r),
		Gamma:        Gamma(s, k, t, sigma, r),
		Theta:        Theta(s, k, t, sigma, kind, r),
		Vega:         Vega(s, k, t, sigma, r),
		Rho:          Rho(s, k, t, sigma, kind, r),
		TimeToExpiry: t,
	}
}
