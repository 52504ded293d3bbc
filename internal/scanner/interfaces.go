// Package scanner runs the opportunity detectors across contracts, symbols and
// the watched universe, and reconciles the results with the opportunity store.
package scanner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/options-edge/internal/models"
)

// MarketData supplies prices, contracts and quotes for a scan
type MarketData interface {
	GetUnderlyingPrice(ctx context.Context, symbol string) (*models.UnderlyingQuote, error)
	ListActiveContracts(ctx context.Context, symbol string, now time.Time) ([]*models.ContractSpec, error)
	GetLatestQuote(ctx context.Context, contractID uuid.UUID) (*models.QuoteSnapshot, error)
	// GetVolatilityHistory returns records ordered newest first.
	GetVolatilityHistory(ctx context.Context, symbol string, limit int) ([]*models.VolatilityRecord, error)
	GetAverageVolume(ctx context.Context, contractID uuid.UUID, days int) (float64, error)
	ListWatchedSymbols(ctx context.Context) ([]string, error)
}

// OpportunityStore persists candidates. WithinTransaction runs fn so that every
// store call made with the context it receives commits or rolls back together.
type OpportunityStore interface {
	UpsertOpportunity(ctx context.Context, candidate *models.Candidate) error
	DeactivateAllOpportunities(ctx context.Context) (int64, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ActiveCounter is implemented by stores that can summarise active opportunities
type ActiveCounter interface {
	CountActiveBySymbol(ctx context.Context) (map[string]int, error)
}

// volumeAware detectors need the trailing average volume
type volumeAware interface {
	NeedsAverageVolume() bool
}
