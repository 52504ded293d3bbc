package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/options-edge/internal/database"
	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/pricing"
)

const contractColumns = `id, symbol, contract_symbol, strike_price, option_type, expiry_date, is_active, created_at`

// PostgresContractRepository implements ContractRepository for PostgreSQL
type PostgresContractRepository struct {
	db *database.DB
}

// NewPostgresContractRepository creates a new contract repository
func NewPostgresContractRepository(db *database.DB) ContractRepository {
	return &PostgresContractRepository{db: db}
}

// Upsert validates and stores a contract keyed by its contract symbol
func (r *PostgresContractRepository) Upsert(ctx context.Context, contract *models.ContractSpec) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	contract.Symbol = strings.ToUpper(contract.Symbol)
	if err := contract.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO option_contracts (id, symbol, contract_symbol, strike_price, option_type, expiry_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contract_symbol) DO UPDATE
		SET is_active = EXCLUDED.is_active
		RETURNING id, created_at
	`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		contract.ID, contract.Symbol, contract.ContractSymbol,
		toNumeric(contract.StrikePrice, priceScale), string(contract.Kind),
		contract.ExpiryDate, contract.Active,
	).Scan(&contract.ID, &contract.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert contract %s: %w", contract.ContractSymbol, err)
	}

	return nil
}

// GetByID retrieves a contract by ID
func (r *PostgresContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContractSpec, error) {
	query := `SELECT ` + contractColumns + ` FROM option_contracts WHERE id = $1`

	rows, err := r.db.Querier(ctx).Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query contract: %w", err)
	}

	contract, err := pgx.CollectOneRow(rows, scanContract)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}

	return contract, nil
}

// ListActive returns active contracts for a symbol that expire after now
func (r *PostgresContractRepository) ListActive(ctx context.Context, symbol string, now time.Time) ([]*models.ContractSpec, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM option_contracts
		WHERE symbol = $1 AND is_active AND expiry_date > $2
		ORDER BY expiry_date, strike_price, option_type
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, strings.ToUpper(symbol), now)
	if err != nil {
		return nil, fmt.Errorf("failed to query active contracts: %w", err)
	}

	contracts, err := pgx.CollectRows(rows, scanContract)
	if err != nil {
		return nil, fmt.Errorf("failed to scan contracts: %w", err)
	}

	return contracts, nil
}

func scanContract(row pgx.CollectableRow) (*models.ContractSpec, error) {
	c := &models.ContractSpec{}
	var strike decimal.Decimal
	var kind string
	if err := row.Scan(&c.ID, &c.Symbol, &c.ContractSymbol, &strike, &kind, &c.ExpiryDate, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.StrikePrice = strike.InexactFloat64()
	parsed, err := pricing.ParseOptionKind(kind)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", c.ContractSymbol, err)
	}
	c.Kind = parsed
	return c, nil
}
