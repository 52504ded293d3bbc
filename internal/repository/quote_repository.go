package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/options-edge/internal/database"
	"github.com/yourusername/options-edge/internal/models"
)

const quoteColumns = `contract_id, timestamp, bid, ask, last_price, volume, open_interest,
	implied_volatility, delta, gamma, theta, vega, rho,
	bid_ask_spread, spread_percentage, intrinsic_value, time_value`

// PostgresQuoteRepository implements QuoteRepository for PostgreSQL
type PostgresQuoteRepository struct {
	db *database.DB
}

// NewPostgresQuoteRepository creates a new quote repository
func NewPostgresQuoteRepository(db *database.DB) QuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// Insert stores a snapshot, recomputing the derived spread fields first
func (r *PostgresQuoteRepository) Insert(ctx context.Context, quote *models.QuoteSnapshot) error {
	quote.RefreshSpread()

	query := `
		INSERT INTO option_prices (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (contract_id, timestamp) DO NOTHING
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		quote.ContractID, quote.Time, quote.Bid, quote.Ask, quote.LastPrice, quote.Volume, quote.OpenInterest,
		quote.ImpliedVolatility, quote.Delta, quote.Gamma, quote.Theta, quote.Vega, quote.Rho,
		quote.BidAskSpread, quote.SpreadPercentage, quote.IntrinsicValue, quote.TimeValue,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	return nil
}

// GetLatest retrieves the newest snapshot for a contract
func (r *PostgresQuoteRepository) GetLatest(ctx context.Context, contractID uuid.UUID) (*models.QuoteSnapshot, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM option_prices
		WHERE contract_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	q := &models.QuoteSnapshot{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, contractID).Scan(
		&q.ContractID, &q.Time, &q.Bid, &q.Ask, &q.LastPrice, &q.Volume, &q.OpenInterest,
		&q.ImpliedVolatility, &q.Delta, &q.Gamma, &q.Theta, &q.Vega, &q.Rho,
		&q.BidAskSpread, &q.SpreadPercentage, &q.IntrinsicValue, &q.TimeValue,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNoQuote
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest quote: %w", err)
	}

	return q, nil
}

// AverageVolume returns the mean of each day's last reported volume over the
// trailing window, excluding today, or 0 when there is no history.
func (r *PostgresQuoteRepository) AverageVolume(ctx context.Context, contractID uuid.UUID, days int) (float64, error) {
	query := `
		SELECT COALESCE(AVG(daily.volume), 0)::DOUBLE PRECISION
		FROM (
			SELECT DISTINCT ON (timestamp::date) volume
			FROM option_prices
			WHERE contract_id = $1
				AND timestamp >= NOW() - make_interval(days => $2)
				AND timestamp::date < CURRENT_DATE
			ORDER BY timestamp::date, timestamp DESC
		) daily
	`

	var avg float64
	if err := r.db.Querier(ctx).QueryRow(ctx, query, contractID, days).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to query average volume: %w", err)
	}

	return avg, nil
}

// RecentImpliedVols returns positive IVs from the newest quotes of the symbol's active contracts
func (r *PostgresQuoteRepository) RecentImpliedVols(ctx context.Context, symbol string, limit int) ([]float64, error) {
	query := `
		SELECT p.implied_volatility
		FROM option_prices p
		JOIN option_contracts c ON c.id = p.contract_id
		WHERE c.symbol = $1 AND c.is_active AND p.implied_volatility > 0
		ORDER BY p.timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query implied vols: %w", err)
	}

	ivs, err := pgx.CollectRows(rows, pgx.RowTo[float64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan implied vols: %w", err)
	}

	return ivs, nil
}
