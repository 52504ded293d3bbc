package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/options-edge/internal/database"
	"github.com/yourusername/options-edge/internal/models"
)

// priceScale is the number of decimals kept for prices and strikes
const priceScale = 4

// PostgresPriceRepository implements PriceRepository for PostgreSQL
type PostgresPriceRepository struct {
	db *database.DB
}

// NewPostgresPriceRepository creates a new price repository
func NewPostgresPriceRepository(db *database.DB) PriceRepository {
	return &PostgresPriceRepository{db: db}
}

// Insert stores a bar, replacing any bar with the same timestamp
func (r *PostgresPriceRepository) Insert(ctx context.Context, bar *models.PriceBar) error {
	query := `
		INSERT INTO stock_prices (symbol, timestamp, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, timestamp) DO UPDATE
		SET open_price = EXCLUDED.open_price,
		    high_price = EXCLUDED.high_price,
		    low_price = EXCLUDED.low_price,
		    close_price = EXCLUDED.close_price,
		    volume = EXCLUDED.volume
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		strings.ToUpper(bar.Symbol), bar.Time,
		toNumeric(bar.Open, priceScale), toNumeric(bar.High, priceScale),
		toNumeric(bar.Low, priceScale), toNumeric(bar.Close, priceScale),
		bar.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price bar: %w", err)
	}

	return nil
}

// GetLatest returns the most recent close as the underlying quote
func (r *PostgresPriceRepository) GetLatest(ctx context.Context, symbol string) (*models.UnderlyingQuote, error) {
	query := `
		SELECT symbol, close_price, timestamp
		FROM stock_prices
		WHERE symbol = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	q := &models.UnderlyingQuote{}
	var price decimal.Decimal
	err := r.db.Querier(ctx).QueryRow(ctx, query, strings.ToUpper(symbol)).Scan(&q.Symbol, &price, &q.Time)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNoUnderlyingPrice
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest price: %w", err)
	}
	q.Price = price.InexactFloat64()

	return q, nil
}

// RecentCloses returns up to limit closes ordered oldest first
func (r *PostgresPriceRepository) RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error) {
	query := `
		SELECT close_price FROM (
			SELECT close_price, timestamp
			FROM stock_prices
			WHERE symbol = $1
			ORDER BY timestamp DESC
			LIMIT $2
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closes: %w", err)
	}

	closes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (float64, error) {
		var d decimal.Decimal
		err := row.Scan(&d)
		return d.InexactFloat64(), err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan closes: %w", err)
	}

	return closes, nil
}

// toNumeric rounds a float for a NUMERIC column
func toNumeric(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}
