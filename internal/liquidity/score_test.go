package liquidity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/options-edge/internal/models"
)

func quote(bid, ask float64, volume int64, oi int64) *models.QuoteSnapshot {
	q := &models.QuoteSnapshot{Volume: volume, OpenInterest: models.Int64Ptr(oi)}
	q.SetBidAsk(bid, ask)
	return q
}

func TestScoreBands(t *testing.T) {
	tests := []struct {
		name string
		q    *models.QuoteSnapshot
		want float64
	}{
		{"nil quote", nil, 0},
		{"fully liquid", quote(2.00, 2.04, 500, 5000), 100},
		{"no spread no volume", &models.QuoteSnapshot{LastPrice: 1.2}, 0},
		{"moderate", quote(1.00, 1.04, 60, 600), 80},
		{"thin", quote(1.00, 1.20, 5, 50), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.q), 1e-9)
		})
	}
}

func TestSpreadPoints(t *testing.T) {
	assert.Equal(t, 0.0, SpreadPoints(nil))
	assert.Equal(t, 40.0, SpreadPoints(models.Float64Ptr(0)))
	assert.Equal(t, 40.0, SpreadPoints(models.Float64Ptr(4.99)))
	assert.InDelta(t, 30.0, SpreadPoints(models.Float64Ptr(5)), 1e-9)
	assert.InDelta(t, 15.0, SpreadPoints(models.Float64Ptr(7.5)), 1e-9)
	assert.Equal(t, 0.0, SpreadPoints(models.Float64Ptr(10)))
	assert.Equal(t, 0.0, SpreadPoints(models.Float64Ptr(25)))
}

func TestScoreMonotone(t *testing.T) {
	prev := -1.0
	for _, v := range []int64{0, 9, 10, 49, 50, 99, 100, 10000} {
		s := Score(&models.QuoteSnapshot{Volume: v})
		assert.GreaterOrEqual(t, s, prev, "volume=%d", v)
		prev = s
	}

	prev = -1.0
	for _, oi := range []int64{0, 99, 100, 499, 500, 999, 1000} {
		s := Score(&models.QuoteSnapshot{OpenInterest: models.Int64Ptr(oi)})
		assert.GreaterOrEqual(t, s, prev, "oi=%d", oi)
		prev = s
	}

	prev = 101.0
	for pct := 0.0; pct <= 15; pct += 0.5 {
		s := SpreadPoints(models.Float64Ptr(pct))
		assert.LessOrEqual(t, s, prev, "spread=%.1f", pct)
		prev = s
	}
}
