// Package pricing implements Black-Scholes pricing, Greeks and implied volatility.
//
// Every function is pure. Degenerate inputs (non-positive volatility, time, spot or
// strike) produce a zero result instead of an error so callers can degrade gracefully.
package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// DefaultRiskFreeRate is the annual rate used when none is configured.
	DefaultRiskFreeRate = 0.05

	// MinTimeToExpiry floors time to expiry (in years).
	MinTimeToExpiry = 0.0001

	daysPerYear = 365.0
)

// OptionKind is the contract right.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// ParseOptionKind parses "call"/"put" (also "c"/"p"), ignoring case.
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return "", fmt.Errorf("invalid option kind %q", s)
	}
}

// IsCall reports whether the kind is a call.
func (k OptionKind) IsCall() bool {
	return k == Call
}

// String returns the lower-case kind name.
func (k OptionKind) String() string {
	return string(k)
}

// TimeToExpiry returns the time from now until expiry in years, floored at MinTimeToExpiry.
func TimeToExpiry(expiry, now time.Time) float64 {
	days := expiry.Sub(now).Hours() / 24
	return math.Max(days/daysPerYear, MinTimeToExpiry)
}

// DaysToExpiry is TimeToExpiry expressed in days.
func DaysToExpiry(expiry, now time.Time) float64 {
	return TimeToExpiry(expiry, now) * daysPerYear
}

func validInputs(s, k, t, sigma float64) bool {
	return s > 0 && k > 0 && t > 0 && sigma > 0 &&
		!math.IsNaN(s) && !math.IsNaN(k) && !math.IsNaN(t) && !math.IsNaN(sigma) &&
		!math.IsInf(s, 0) && !math.IsInf(k, 0) && !math.IsInf(t, 0) && !math.IsInf(sigma, 0)
}

// d1d2 returns the Black-Scholes d1 and d2 terms.
func d1d2(s, k, t, sigma, r float64) (float64, float64) {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// finite maps NaN and Inf to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// TheoreticalPrice returns the Black-Scholes price of a European option.
func TheoreticalPrice(s, k, t, sigma float64, kind OptionKind, r float64) float64 {
	if !validInputs(s, k, t, sigma) {
		return 0
	}
	d1, d2 := d1d2(s, k, t, sigma, r)
	discount := math.Exp(-r * t)

	var price float64
	if kind.IsCall() {
		price = s*normCDF(d1) - k*discount*normCDF(d2)
	} else {
		price = k*discount*normCDF(-d2) - s*normCDF(-d1)
	}
	return finite(price)
}

// IntrinsicValue is the exercise value of the option at spot s.
func IntrinsicValue(s, k float64, kind OptionKind) float64 {
	if kind.IsCall() {
		return math.Max(0, s-k)
	}
	return math.Max(0, k-s)
}

// TimeValue is the premium above intrinsic value, never negative.
func TimeValue(price, intrinsic float64) float64 {
	return math.Max(0, price-intrinsic)
}
