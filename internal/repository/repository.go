// Package repository provides the PostgreSQL-backed stores behind the scanner
// and the volatility refresh.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/options-edge/internal/database"
	"github.com/yourusername/options-edge/internal/models"
)

// Repositories holds all repository implementations
type Repositories struct {
	Symbol      SymbolRepository
	Watchlist   WatchlistRepository
	Price       PriceRepository
	Contract    ContractRepository
	Quote       QuoteRepository
	Volatility  VolatilityRepository
	Opportunity OpportunityRepository

	volatilityCache *CachedVolatilityReader
}

// NewRepositories creates and returns all repository implementations.
// cacheTTL bounds how long volatility history is reused across scans.
func NewRepositories(db *database.DB, cacheTTL time.Duration) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	volatility := NewPostgresVolatilityRepository(db)
	return &Repositories{
		Symbol:          NewPostgresSymbolRepository(db),
		Watchlist:       NewPostgresWatchlistRepository(db),
		Price:           NewPostgresPriceRepository(db),
		Contract:        NewPostgresContractRepository(db),
		Quote:           NewPostgresQuoteRepository(db),
		Volatility:      volatility,
		Opportunity:     NewPostgresOpportunityRepository(db),
		volatilityCache: NewCachedVolatilityReader(volatility, cacheTTL),
	}, nil
}

// MarketData adapts the repositories to the scanner's market data source
func (r *Repositories) MarketData() *MarketDataSource {
	return &MarketDataSource{repos: r}
}

// VolatilityStore adapts the repositories to the volatility refresh
func (r *Repositories) VolatilityStore() *VolatilityStore {
	return &VolatilityStore{repos: r}
}

// MarketDataSource reads prices, contracts, quotes and volatility for a scan
type MarketDataSource struct {
	repos *Repositories
}

// GetUnderlyingPrice returns the latest close for symbol
func (m *MarketDataSource) GetUnderlyingPrice(ctx context.Context, symbol string) (*models.UnderlyingQuote, error) {
	return m.repos.Price.GetLatest(ctx, symbol)
}

// ListActiveContracts returns the unexpired active contracts for symbol
func (m *MarketDataSource) ListActiveContracts(ctx context.Context, symbol string, now time.Time) ([]*models.ContractSpec, error) {
	return m.repos.Contract.ListActive(ctx, symbol, now)
}

// GetLatestQuote returns the newest quote of a contract
func (m *MarketDataSource) GetLatestQuote(ctx context.Context, contractID uuid.UUID) (*models.QuoteSnapshot, error) {
	return m.repos.Quote.GetLatest(ctx, contractID)
}

// GetVolatilityHistory returns cached history newest first
func (m *MarketDataSource) GetVolatilityHistory(ctx context.Context, symbol string, limit int) ([]*models.VolatilityRecord, error) {
	return m.repos.volatilityCache.GetVolatilityHistory(ctx, symbol, limit)
}

// GetAverageVolume returns the trailing daily average volume of a contract
func (m *MarketDataSource) GetAverageVolume(ctx context.Context, contractID uuid.UUID, days int) (float64, error) {
	return m.repos.Quote.AverageVolume(ctx, contractID, days)
}

// ListWatchedSymbols returns the scan universe
func (m *MarketDataSource) ListWatchedSymbols(ctx context.Context) ([]string, error) {
	return m.repos.Watchlist.ListWatchedSymbols(ctx)
}

// VolatilityStore reads samples for and appends volatility records
type VolatilityStore struct {
	repos *Repositories
}

// RecentImpliedVols returns positive IVs of the symbol's newest quotes
func (v *VolatilityStore) RecentImpliedVols(ctx context.Context, symbol string, limit int) ([]float64, error) {
	return v.repos.Quote.RecentImpliedVols(ctx, symbol, limit)
}

// RecentCloses returns daily closes oldest first
func (v *VolatilityStore) RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error) {
	return v.repos.Price.RecentCloses(ctx, symbol, limit)
}

// GetVolatilityHistory reads stored records newest first, bypassing the cache
func (v *VolatilityStore) GetVolatilityHistory(ctx context.Context, symbol string, limit int) ([]*models.VolatilityRecord, error) {
	return v.repos.Volatility.GetHistory(ctx, symbol, limit)
}

// InsertVolatility appends a record and drops the symbol's cached history
func (v *VolatilityStore) InsertVolatility(ctx context.Context, record *models.VolatilityRecord) error {
	if err := v.repos.Volatility.Insert(ctx, record); err != nil {
		return err
	}
	v.repos.volatilityCache.Invalidate(record.Symbol)
	return nil
}
