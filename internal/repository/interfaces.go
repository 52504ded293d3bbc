package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/options-edge/internal/models"
)

// SymbolRepository defines the interface for underlying symbol data access
type SymbolRepository interface {
	Upsert(ctx context.Context, symbol *models.Symbol) error
	GetByTicker(ctx context.Context, ticker string) (*models.Symbol, error)
	ListActive(ctx context.Context) ([]*models.Symbol, error)
}

// WatchlistRepository defines the interface for the watched universe
type WatchlistRepository interface {
	Add(ctx context.Context, ticker string) error
	Remove(ctx context.Context, ticker string) error
	ListWatchedSymbols(ctx context.Context) ([]string, error)
}

// PriceRepository defines the interface for underlying price bars
type PriceRepository interface {
	Insert(ctx context.Context, bar *models.PriceBar) error
	GetLatest(ctx context.Context, symbol string) (*models.UnderlyingQuote, error)
	RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error)
}

// ContractRepository defines the interface for option contract data access
type ContractRepository interface {
	Upsert(ctx context.Context, contract *models.ContractSpec) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContractSpec, error)
	ListActive(ctx context.Context, symbol string, now time.Time) ([]*models.ContractSpec, error)
}

// QuoteRepository defines the interface for option quote snapshots
type QuoteRepository interface {
	Insert(ctx context.Context, quote *models.QuoteSnapshot) error
	GetLatest(ctx context.Context, contractID uuid.UUID) (*models.QuoteSnapshot, error)
	AverageVolume(ctx context.Context, contractID uuid.UUID, days int) (float64, error)
	RecentImpliedVols(ctx context.Context, symbol string, limit int) ([]float64, error)
}

// VolatilityRepository defines the interface for volatility records
type VolatilityRepository interface {
	Insert(ctx context.Context, record *models.VolatilityRecord) error
	// GetHistory returns records ordered newest first.
	GetHistory(ctx context.Context, symbol string, limit int) ([]*models.VolatilityRecord, error)
}

// OpportunityRepository defines the interface for detected opportunities
type OpportunityRepository interface {
	UpsertOpportunity(ctx context.Context, candidate *models.Candidate) error
	DeactivateAllOpportunities(ctx context.Context) (int64, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	CountActiveBySymbol(ctx context.Context) (map[string]int, error)
	ListActive(ctx context.Context, limit int) ([]*models.ActiveOpportunity, error)
}
