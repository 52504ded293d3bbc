package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/options-edge/internal/database"
	"github.com/yourusername/options-edge/internal/models"
)

// PostgresVolatilityRepository implements VolatilityRepository for PostgreSQL
type PostgresVolatilityRepository struct {
	db *database.DB
}

// NewPostgresVolatilityRepository creates a new volatility repository
func NewPostgresVolatilityRepository(db *database.DB) VolatilityRepository {
	return &PostgresVolatilityRepository{db: db}
}

// Insert appends a volatility record
func (r *PostgresVolatilityRepository) Insert(ctx context.Context, record *models.VolatilityRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO iv_analysis (id, symbol, timestamp, current_iv, iv_rank, iv_percentile, hv_20d, hv_30d)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		record.ID, strings.ToUpper(record.Symbol), record.Time,
		record.CurrentIV, record.IVRank, record.IVPercentile, record.HV20, record.HV30,
	)
	if err != nil {
		return fmt.Errorf("failed to insert volatility record: %w", err)
	}

	return nil
}

// GetHistory returns up to limit records, newest first
func (r *PostgresVolatilityRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*models.VolatilityRecord, error) {
	query := `
		SELECT id, symbol, timestamp, current_iv, iv_rank, iv_percentile, hv_20d, hv_30d
		FROM iv_analysis
		WHERE symbol = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query volatility history: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.VolatilityRecord, error) {
		v := &models.VolatilityRecord{}
		err := row.Scan(&v.ID, &v.Symbol, &v.Time, &v.CurrentIV, &v.IVRank, &v.IVPercentile, &v.HV20, &v.HV30)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan volatility history: %w", err)
	}

	return records, nil
}
