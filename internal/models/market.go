package models

import (
	"time"

	"github.com/google/uuid"
)

// Symbol is an underlying equity tracked by the system
type Symbol struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Ticker      string    `db:"symbol" json:"symbol" validate:"required"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Sector      string    `db:"sector" json:"sector"`
	Active      bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UnderlyingQuote is the latest underlying price used for a scan
type UnderlyingQuote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// VolatilityRecord is one volatility-context observation for a symbol
type VolatilityRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Symbol       string    `db:"symbol" json:"symbol"`
	Time         time.Time `db:"timestamp" json:"timestamp"`
	CurrentIV    float64   `db:"current_iv" json:"current_iv"`
	IVRank       float64   `db:"iv_rank" json:"iv_rank"`
	IVPercentile float64   `db:"iv_percentile" json:"iv_percentile"`
	HV20         *float64  `db:"hv_20d" json:"hv_20d"`
	HV30         *float64  `db:"hv_30d" json:"hv_30d"`
}

// LatestVolatility returns the first record of a newest-first history, or nil
func LatestVolatility(history []*VolatilityRecord) *VolatilityRecord {
	if len(history) == 0 {
		return nil
	}
	return history[0]
}

// PriceBar is one daily OHLCV bar for an underlying
type PriceBar struct {
	Symbol string    `db:"symbol" json:"symbol"`
	Time   time.Time `db:"timestamp" json:"timestamp"`
	Open   float64   `db:"open_price" json:"open"`
	High   float64   `db:"high_price" json:"high"`
	Low    float64   `db:"low_price" json:"low"`
	Close  float64   `db:"close_price" json:"close"`
	Volume int64     `db:"volume" json:"volume"`
}
