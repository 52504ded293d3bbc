package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/options-edge/internal/database"
	"github.com/yourusername/options-edge/internal/models"
)

// scoreScale matches the NUMERIC(5, 2) score column
const scoreScale = 2

// PostgresOpportunityRepository implements OpportunityRepository for PostgreSQL
type PostgresOpportunityRepository struct {
	db *database.DB
}

// NewPostgresOpportunityRepository creates a new opportunity repository
func NewPostgresOpportunityRepository(db *database.DB) OpportunityRepository {
	return &PostgresOpportunityRepository{db: db}
}

// WithinTransaction runs fn in a transaction shared by every repository call made with its context
func (r *PostgresOpportunityRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTransaction(ctx, fn)
}

// UpsertOpportunity inserts the candidate or updates and reactivates the row
// with the same (contract_id, opportunity_type).
func (r *PostgresOpportunityRepository) UpsertOpportunity(ctx context.Context, candidate *models.Candidate) error {
	opp := candidate.ToOpportunity()

	query := `
		INSERT INTO trading_opportunities
			(id, contract_id, opportunity_type, score, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (contract_id, opportunity_type) DO UPDATE
		SET score = EXCLUDED.score,
		    description = EXCLUDED.description,
		    is_active = TRUE,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		opp.ID, opp.ContractID, opp.OpportunityType,
		toNumeric(opp.Score, scoreScale), opp.Description, opp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert opportunity %s: %w", candidate.Key(), err)
	}

	return nil
}

// DeactivateAllOpportunities marks every active opportunity inactive
func (r *PostgresOpportunityRepository) DeactivateAllOpportunities(ctx context.Context) (int64, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx,
		`UPDATE trading_opportunities SET is_active = FALSE, updated_at = NOW() WHERE is_active`)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate opportunities: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountActiveBySymbol counts active opportunities per underlying
func (r *PostgresOpportunityRepository) CountActiveBySymbol(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT c.symbol, COUNT(*)
		FROM trading_opportunities o
		JOIN option_contracts c ON c.id = o.contract_id
		WHERE o.is_active
		GROUP BY c.symbol
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count active opportunities: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var symbol string
		var n int
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity count: %w", err)
		}
		counts[symbol] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opportunity counts: %w", err)
	}

	return counts, nil
}

// ListActive returns active opportunities with their contracts, best score first
func (r *PostgresOpportunityRepository) ListActive(ctx context.Context, limit int) ([]*models.ActiveOpportunity, error) {
	query := `
		SELECT o.id, o.contract_id, o.opportunity_type, o.score, o.description, o.is_active,
		       o.created_at, o.updated_at,
		       c.symbol, c.contract_symbol, c.option_type, c.strike_price, c.expiry_date
		FROM trading_opportunities o
		JOIN option_contracts c ON c.id = o.contract_id
		WHERE o.is_active
		ORDER BY o.score DESC, o.updated_at DESC
		LIMIT $1
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active opportunities: %w", err)
	}

	opps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.ActiveOpportunity, error) {
		a := &models.ActiveOpportunity{}
		var score, strike decimal.Decimal
		err := row.Scan(
			&a.ID, &a.ContractID, &a.OpportunityType, &score, &a.Description, &a.Active,
			&a.CreatedAt, &a.UpdatedAt,
			&a.Symbol, &a.ContractSymbol, &a.Kind, &strike, &a.ExpiryDate,
		)
		a.Score = score.InexactFloat64()
		a.StrikePrice = strike.InexactFloat64()
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan active opportunities: %w", err)
	}

	return opps, nil
}
