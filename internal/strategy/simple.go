package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/pricing"
)

// IVExtremeDetector flags contracts when the underlying's IV rank sits at
// either end of its range.
type IVExtremeDetector struct {
	BaseDetector
	HighRank float64
	LowRank  float64
}

// NewIVExtremeDetector creates the detector with 80/20 thresholds
func NewIVExtremeDetector() *IVExtremeDetector {
	return &IVExtremeDetector{
		BaseDetector: BaseDetector{NameValue: "iv_extreme", GenerationValue: GenerationSimple},
		HighRank:     80,
		LowRank:      20,
	}
}

// Detect evaluates one contract
func (d *IVExtremeDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Volatility == nil {
		return nil, nil
	}

	rank := in.Volatility.IVRank
	q := in.Quote
	score := 40.0

	var oppType, label string
	switch {
	case rank >= d.HighRank:
		oppType, label = models.OpportunityHighIV, "HIGH IV"
		score += Scaled(rank, d.HighRank, 100, 30)
		if theta, ok := present(q.Theta); ok {
			score += Scaled(math.Abs(theta), 0, 0.10, 15)
		}
	case rank <= d.LowRank:
		oppType, label = models.OpportunityLowIV, "LOW IV"
		score += Scaled(d.LowRank-rank, 0, d.LowRank, 30)
		if vega, ok := present(q.Vega); ok {
			score += Scaled(vega, 0, 0.30, 15)
		}
	default:
		return nil, nil
	}

	desc := fmt.Sprintf("%s: %s (IV Rank: %.0f%%, IV Percentile: %.0f%%)",
		label, describe(in), rank, in.Volatility.IVPercentile)

	return d.NewCandidate(in, oppType, score, desc, map[string]float64{
		"iv_rank":       rank,
		"iv_percentile": in.Volatility.IVPercentile,
		"current_iv":    in.Volatility.CurrentIV,
	}), nil
}

// VolumeAnomalyDetector flags volume well above the trailing average
type VolumeAnomalyDetector struct {
	BaseDetector
	MinRatio float64
}

// NewVolumeAnomalyDetector creates the detector with a 1.5x threshold
func NewVolumeAnomalyDetector() *VolumeAnomalyDetector {
	return &VolumeAnomalyDetector{
		BaseDetector: BaseDetector{NameValue: "volume_anomaly", GenerationValue: GenerationSimple},
		MinRatio:     1.5,
	}
}

// NeedsAverageVolume tells the scanner to load the trailing average volume
func (d *VolumeAnomalyDetector) NeedsAverageVolume() bool {
	return true
}

// Detect evaluates one contract
func (d *VolumeAnomalyDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.AverageVolume <= 0 {
		return nil, nil
	}

	ratio := float64(in.Quote.Volume) / in.AverageVolume
	if ratio < d.MinRatio {
		return nil, nil
	}

	oi := in.Quote.GetOpenInterest()
	score := 50.0
	score += Scaled(ratio, d.MinRatio, d.MinRatio+3.0, 30)
	switch {
	case oi >= 1000:
		score += 10
	case oi >= 500:
		score += 5
	}

	desc := fmt.Sprintf("UNUSUAL VOLUME: %s (Volume: %d, %.1fx 10-day avg %.0f, OI: %d)",
		describe(in), in.Quote.Volume, ratio, in.AverageVolume, oi)

	return d.NewCandidate(in, models.OpportunityUnusualVolume, score, desc, map[string]float64{
		"volume":         float64(in.Quote.Volume),
		"average_volume": in.AverageVolume,
		"volume_ratio":   ratio,
		"open_interest":  float64(oi),
	}), nil
}

// TimeValueDecayDetector flags short-dated contracts that are mostly
// extrinsic value.
type TimeValueDecayDetector struct {
	BaseDetector
	MaxDays       float64
	MinTimeValPct float64
	MinTimeValue  float64
}

// NewTimeValueDecayDetector creates the detector with its default gates
func NewTimeValueDecayDetector() *TimeValueDecayDetector {
	return &TimeValueDecayDetector{
		BaseDetector:  BaseDetector{NameValue: "time_value_decay", GenerationValue: GenerationSimple},
		MaxDays:       30,
		MinTimeValPct: 0.5,
		MinTimeValue:  0.50,
	}
}

// Detect evaluates one contract
func (d *TimeValueDecayDetector) Detect(in Input) (*models.Candidate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	days := daysToExpiry(in)
	if days > d.MaxDays {
		return nil, nil
	}

	q := in.Quote
	mid := q.GetMidPrice()
	if mid <= 0 {
		return nil, nil
	}

	intrinsic := pricing.IntrinsicValue(in.UnderlyingPrice, in.Contract.StrikePrice, in.Contract.Kind)
	timeValue := pricing.TimeValue(mid, intrinsic)
	tvPct := timeValue / mid
	if tvPct < d.MinTimeValPct || timeValue <= d.MinTimeValue {
		return nil, nil
	}

	score := 45.0
	score += Scaled(tvPct, d.MinTimeValPct, 1.0, 30)
	if theta, ok := present(q.Theta); ok {
		score += Scaled(math.Abs(theta), 0, 0.10, 15)
	}

	desc := fmt.Sprintf("HIGH TIME VALUE: %s (Time Value: $%.2f, %.0f%% of premium, %.0f days left)",
		describe(in), timeValue, tvPct*100, days)

	return d.NewCandidate(in, models.OpportunityHighTimeValue, score, desc, map[string]float64{
		"time_value":     timeValue,
		"time_value_pct": tvPct,
		"intrinsic":      intrinsic,
		"days":           days,
	}), nil
}
