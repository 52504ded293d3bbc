// Package volatility computes realized volatility and implied-volatility context
// (IV rank and IV percentile) from time-ordered series.
//
// All series are ordered oldest first. Every statistic is bounded: insufficient
// data yields a neutral sentinel rather than an error.
package volatility

import (
	"math"
)

const (
	// TradingDaysPerYear annualizes daily log-return volatility.
	TradingDaysPerYear = 252

	// DefaultLookback is the IV rank/percentile window in records.
	DefaultLookback = 365

	// MinHistoryPoints is the minimum IV history length for rank/percentile.
	MinHistoryPoints = 10

	// Neutral is returned by rank/percentile when the history cannot support a reading.
	Neutral = 50.0
)

// HistoricalVolatility returns annualized close-to-close volatility over the
// trailing window. It returns 0 when fewer than window+1 closes are available.
func HistoricalVolatility(closes []float64, window int) float64 {
	if window < 2 || len(closes) < window+1 {
		return 0
	}
	tail := closes[len(closes)-(window+1):]

	returns := make([]float64, 0, window)
	for i := 1; i < len(tail); i++ {
		if tail[i-1] <= 0 || tail[i] <= 0 {
			return 0
		}
		returns = append(returns, math.Log(tail[i]/tail[i-1]))
	}
	return stdDev(returns) * math.Sqrt(TradingDaysPerYear)
}

// IVRank locates current inside the [min,max] range of the trailing window.
func IVRank(current float64, history []float64, window int) float64 {
	recent := trailing(history, window)
	if len(recent) < MinHistoryPoints {
		return Neutral
	}

	lo, hi := recent[0], recent[0]
	for _, v := range recent[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return Neutral
	}
	return clamp(100*(current-lo)/(hi-lo), 0, 100)
}

// IVPercentile is the share of the trailing window strictly below current.
func IVPercentile(current float64, history []float64, window int) float64 {
	recent := trailing(history, window)
	if len(recent) < MinHistoryPoints {
		return Neutral
	}

	below := 0
	for _, v := range recent {
		if v < current {
			below++
		}
	}
	return clamp(100*float64(below)/float64(len(recent)), 0, 100)
}

// Mean returns the arithmetic mean of the positive, finite values in xs.
func Mean(xs []float64) (float64, bool) {
	sum, n := 0.0, 0
	for _, x := range xs {
		if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func trailing(xs []float64, window int) []float64 {
	if window <= 0 {
		window = DefaultLookback
	}
	if len(xs) > window {
		return xs[len(xs)-window:]
	}
	return xs
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return Neutral
	}
	return math.Max(lo, math.Min(hi, v))
}
