package pricing

import "math"

const (
	ivLowerBound = 0.0001
	ivUpperBound = 5.0

	bisectionMaxIterations = 200
	bisectionWidth         = 1e-10

	newtonSeed          = 0.5
	newtonMaxIterations = 100
	newtonTolerance     = 1e-5
)

// ImpliedVolatility solves for the volatility that reproduces price.
// The second return value is false when no solution exists.
//
// A bracketed bisection over [0.0001, 5] is tried first. When the target lies
// outside the bracket the Newton-Raphson solver gets a chance.
func ImpliedVolatility(price, s, k, t float64, kind OptionKind, r float64) (float64, bool) {
	if price <= 0 || s <= 0 || k <= 0 || t <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	if sigma, ok := impliedVolBisection(price, s, k, t, kind, r); ok {
		return sigma, true
	}
	return ImpliedVolatilityNewton(price, s, k, t, kind, r)
}

func impliedVolBisection(target, s, k, t float64, kind OptionKind, r float64) (float64, bool) {
	lo, hi := ivLowerBound, ivUpperBound
	fLo := TheoreticalPrice(s, k, t, lo, kind, r) - target
	fHi := TheoreticalPrice(s, k, t, hi, kind, r) - target
	if fLo > 0 || fHi < 0 {
		return 0, false
	}

	for i := 0; i < bisectionMaxIterations && hi-lo > bisectionWidth; i++ {
		mid := 0.5 * (lo + hi)
		if TheoreticalPrice(s, k, t, mid, kind, r)-target < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), true
}

// ImpliedVolatilityNewton is the Newton-Raphson solver: seed 0.5, at most 100
// steps, converged when the price error is below 1e-5. It fails when vega
// vanishes or the estimate leaves the positive half-line.
func ImpliedVolatilityNewton(target, s, k, t float64, kind OptionKind, r float64) (float64, bool) {
	sigma := newtonSeed
	for i := 0; i < newtonMaxIterations; i++ {
		diff := TheoreticalPrice(s, k, t, sigma, kind, r) - target
		if math.Abs(diff) < newtonTolerance {
			return sigma, true
		}

		vega := Vega(s, k, t, sigma, r)
		if vega == 0 {
			return 0, false
		}

		// vega is quoted per volatility point
		sigma -= diff / (vega * 100)
		if sigma <= 0 || math.IsNaN(sigma) {
			return 0, false
		}
	}
	return 0, false
}
