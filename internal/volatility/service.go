package volatility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/options-edge/internal/models"
)

// Limits used when building a volatility record
const (
	QuoteSampleLimit = 500
	PriceSampleLimit = 60
	MinPriceSamples  = 20
)

// Store is the data access the volatility refresh needs
type Store interface {
	// RecentImpliedVols returns positive IVs of the newest quotes for the symbol.
	RecentImpliedVols(ctx context.Context, symbol string, limit int) ([]float64, error)
	// RecentCloses returns daily closes ordered oldest first.
	RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error)
	// GetVolatilityHistory returns stored records ordered newest first.
	GetVolatilityHistory(ctx context.Context, symbol string, limit int) ([]*models.VolatilityRecord, error)
	InsertVolatility(ctx context.Context, record *models.VolatilityRecord) error
}

// Service appends volatility records for symbols
type Service struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a volatility service
func NewService(store Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Build computes a new record for symbol without storing it
func (s *Service) Build(ctx context.Context, symbol string) (*models.VolatilityRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	ivs, err := s.store.RecentImpliedVols(ctx, symbol, QuoteSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load implied vols for %s: %w", symbol, err)
	}
	current, ok := Mean(ivs)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoImpliedVolatility)
	}

	history, err := s.store.GetVolatilityHistory(ctx, symbol, DefaultLookback)
	if err != nil {
		return nil, fmt.Errorf("failed to load volatility history for %s: %w", symbol, err)
	}
	past := make([]float64, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		past = append(past, history[i].CurrentIV)
	}

	closes, err := s.store.RecentCloses(ctx, symbol, PriceSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load closes for %s: %w", symbol, err)
	}

	record := &models.VolatilityRecord{
		ID:           uuid.New(),
		Symbol:       symbol,
		Time:         s.now().UTC(),
		CurrentIV:    current,
		IVRank:       IVRank(current, past, DefaultLookback),
		IVPercentile: IVPercentile(current, past, DefaultLookback),
	}
	if len(closes) >= MinPriceSamples {
		record.HV20 = nonZero(HistoricalVolatility(closes, 20))
		record.HV30 = nonZero(HistoricalVolatility(closes, 30))
	} else {
		s.logger.WithFields(logrus.Fields{
			"symbol":  symbol,
			"samples": len(closes),
		}).Warn("Not enough price history for historical volatility")
	}
	return record, nil
}

// Refresh builds and stores a new record for symbol
func (s *Service) Refresh(ctx context.Context, symbol string) (*models.VolatilityRecord, error) {
	record, err := s.Build(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertVolatility(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store volatility record for %s: %w", record.Symbol, err)
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":        record.Symbol,
		"current_iv":    record.CurrentIV,
		"iv_rank":       record.IVRank,
		"iv_percentile": record.IVPercentile,
	}).Info("Volatility record stored")
	return record, nil
}

// RefreshAll refreshes every symbol, continuing past failures. It stops early
// only when ctx is done.
func (s *Service) RefreshAll(ctx context.Context, symbols []string) (int, error) {
	stored := 0
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		if _, err := s.Refresh(ctx, symbol); err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("Volatility refresh skipped")
			continue
		}
		stored++
	}
	return stored, nil
}

func nonZero(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
