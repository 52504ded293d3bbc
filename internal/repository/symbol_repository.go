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

// PostgresSymbolRepository implements SymbolRepository for PostgreSQL
type PostgresSymbolRepository struct {
	db *database.DB
}

// NewPostgresSymbolRepository creates a new symbol repository
func NewPostgresSymbolRepository(db *database.DB) SymbolRepository {
	return &PostgresSymbolRepository{db: db}
}

// Upsert inserts a symbol or refreshes its descriptive fields
func (r *PostgresSymbolRepository) Upsert(ctx context.Context, symbol *models.Symbol) error {
	if symbol.ID == uuid.Nil {
		symbol.ID = uuid.New()
	}
	symbol.Ticker = strings.ToUpper(strings.TrimSpace(symbol.Ticker))
	if symbol.Ticker == "" {
		return models.ErrSymbolRequired
	}

	query := `
		INSERT INTO symbols (id, symbol, company_name, sector, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol) DO UPDATE
		SET company_name = EXCLUDED.company_name,
		    sector = EXCLUDED.sector,
		    is_active = EXCLUDED.is_active
		RETURNING id, created_at
	`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		symbol.ID, symbol.Ticker, symbol.CompanyName, symbol.Sector, symbol.Active,
	).Scan(&symbol.ID, &symbol.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert symbol %s: %w", symbol.Ticker, err)
	}

	return nil
}

// GetByTicker retrieves a symbol by its ticker
func (r *PostgresSymbolRepository) GetByTicker(ctx context.Context, ticker string) (*models.Symbol, error) {
	query := `
		SELECT id, symbol, company_name, sector, is_active, created_at
		FROM symbols WHERE symbol = $1
	`

	s := &models.Symbol{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, strings.ToUpper(ticker)).Scan(
		&s.ID, &s.Ticker, &s.CompanyName, &s.Sector, &s.Active, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query symbol: %w", err)
	}

	return s, nil
}

// ListActive retrieves all tradeable symbols
func (r *PostgresSymbolRepository) ListActive(ctx context.Context) ([]*models.Symbol, error) {
	query := `
		SELECT id, symbol, company_name, sector, is_active, created_at
		FROM symbols WHERE is_active = TRUE
		ORDER BY symbol
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active symbols: %w", err)
	}

	symbols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Symbol, error) {
		s := &models.Symbol{}
		err := row.Scan(&s.ID, &s.Ticker, &s.CompanyName, &s.Sector, &s.Active, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan symbols: %w", err)
	}

	return symbols, nil
}

// PostgresWatchlistRepository implements WatchlistRepository for PostgreSQL
type PostgresWatchlistRepository struct {
	db *database.DB
}

// NewPostgresWatchlistRepository creates a new watchlist repository
func NewPostgresWatchlistRepository(db *database.DB) WatchlistRepository {
	return &PostgresWatchlistRepository{db: db}
}

// Add activates a watch entry for a known symbol
func (r *PostgresWatchlistRepository) Add(ctx context.Context, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return models.ErrSymbolRequired
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)
		tag, err := q.Exec(ctx,
			`UPDATE user_watchlists SET is_active = TRUE WHERE symbol = $1`, ticker)
		if err != nil {
			return fmt.Errorf("failed to reactivate watchlist entry: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		_, err = q.Exec(ctx,
			`INSERT INTO user_watchlists (id, symbol, is_active) VALUES ($1, $2, TRUE)`,
			uuid.New(), ticker)
		if err != nil {
			return fmt.Errorf("failed to add %s to watchlist: %w", ticker, err)
		}
		return nil
	})
}

// Remove deactivates every watch entry for a symbol
func (r *PostgresWatchlistRepository) Remove(ctx context.Context, ticker string) error {
	tag, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE user_watchlists SET is_active = FALSE WHERE symbol = $1 AND is_active`,
		strings.ToUpper(ticker))
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", ticker, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListWatchedSymbols returns tickers with an active watch entry and an active symbol row
func (r *PostgresWatchlistRepository) ListWatchedSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT s.symbol
		FROM user_watchlists w
		JOIN symbols s ON s.symbol = w.symbol
		WHERE w.is_active AND s.is_active
		ORDER BY s.symbol
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}

	symbols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan watchlist: %w", err)
	}

	return symbols, nil
}
