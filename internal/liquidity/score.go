// Package liquidity scores how tradeable an option quote is on a 0-100 scale.
package liquidity

import (
	"github.com/yourusername/options-edge/internal/models"
)

// Band thresholds
const (
	TightSpreadPct      = 5.0
	AcceptableSpreadPct = 10.0

	MaxScore = 100.0
)

// Score is the additive spread + volume + open interest heuristic
func Score(q *models.QuoteSnapshot) float64 {
	if q == nil {
		return 0
	}
	score := SpreadPoints(q.SpreadPercentage) + VolumePoints(q.Volume) + OpenInterestPoints(q.GetOpenInterest())
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// SpreadPoints awards up to 40 points. An unknown spread earns nothing.
func SpreadPoints(spreadPct *float64) float64 {
	if spreadPct == nil || *spreadPct < 0 {
		return 0
	}
	pct := *spreadPct
	switch {
	case pct < TightSpreadPct:
		return 40
	case pct < AcceptableSpreadPct:
		return 30 * (1 - (pct-TightSpreadPct)/(AcceptableSpreadPct-TightSpreadPct))
	default:
		return 0
	}
}

// VolumePoints awards up to 30 points
func VolumePoints(volume int64) float64 {
	switch {
	case volume >= 100:
		return 30
	case volume >= 50:
		return 20
	case volume >= 10:
		return 10
	default:
		return 0
	}
}

// OpenInterestPoints awards up to 30 points
func OpenInterestPoints(oi int64) float64 {
	switch {
	case oi >= 1000:
		return 30
	case oi >= 500:
		return 20
	case oi >= 100:
		return 10
	default:
		return 0
	}
}
