package database

import (
	"context"
	"fmt"

	"github.com/yourusername/options-edge/internal/config"
)

// schemaStatements creates the tables the repositories read and write.
// Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS symbols (
		id           UUID PRIMARY KEY,
		symbol       TEXT NOT NULL UNIQUE,
		company_name TEXT NOT NULL DEFAULT '',
		sector       TEXT NOT NULL DEFAULT '',
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_watchlists (
		id        UUID PRIMARY KEY,
		symbol    TEXT NOT NULL REFERENCES symbols (symbol),
		added_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_watchlists_active ON user_watchlists (is_active)`,
	`CREATE TABLE IF NOT EXISTS stock_prices (
		symbol      TEXT NOT NULL REFERENCES symbols (symbol),
		timestamp   TIMESTAMPTZ NOT NULL,
		open_price  NUMERIC(14, 4),
		high_price  NUMERIC(14, 4),
		low_price   NUMERIC(14, 4),
		close_price NUMERIC(14, 4) NOT NULL,
		volume      BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (symbol, timestamp)
	)`,
	`CREATE TABLE IF NOT EXISTS option_contracts (
		id              UUID PRIMARY KEY,
		symbol          TEXT NOT NULL REFERENCES symbols (symbol),
		contract_symbol TEXT NOT NULL UNIQUE,
		strike_price    NUMERIC(14, 4) NOT NULL,
		option_type     TEXT NOT NULL CHECK (option_type IN ('call', 'put')),
		expiry_date     TIMESTAMPTZ NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_option_contracts_symbol ON option_contracts (symbol, expiry_date)`,
	`CREATE TABLE IF NOT EXISTS option_prices (
		contract_id        UUID NOT NULL REFERENCES option_contracts (id),
		timestamp          TIMESTAMPTZ NOT NULL,
		bid                DOUBLE PRECISION NOT NULL DEFAULT 0,
		ask                DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_price         DOUBLE PRECISION NOT NULL DEFAULT 0,
		volume             BIGINT NOT NULL DEFAULT 0,
		open_interest      BIGINT,
		implied_volatility DOUBLE PRECISION,
		delta              DOUBLE PRECISION,
		gamma              DOUBLE PRECISION,
		theta              DOUBLE PRECISION,
		vega               DOUBLE PRECISION,
		rho                DOUBLE PRECISION,
		bid_ask_spread     DOUBLE PRECISION,
		spread_percentage  DOUBLE PRECISION,
		intrinsic_value    DOUBLE PRECISION,
		time_value         DOUBLE PRECISION,
		PRIMARY KEY (contract_id, timestamp)
	)`,
	`CREATE TABLE IF NOT EXISTS iv_analysis (
		id            UUID PRIMARY KEY,
		symbol        TEXT NOT NULL REFERENCES symbols (symbol),
		timestamp     TIMESTAMPTZ NOT NULL,
		current_iv    DOUBLE PRECISION NOT NULL,
		iv_rank       DOUBLE PRECISION NOT NULL,
		iv_percentile DOUBLE PRECISION NOT NULL,
		hv_20d        DOUBLE PRECISION,
		hv_30d        DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_iv_analysis_symbol_time ON iv_analysis (symbol, timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS trading_opportunities (
		id               UUID PRIMARY KEY,
		contract_id      UUID NOT NULL REFERENCES option_contracts (id),
		opportunity_type TEXT NOT NULL,
		score            NUMERIC(5, 2) NOT NULL,
		description      TEXT NOT NULL,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (contract_id, opportunity_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trading_opportunities_active ON trading_opportunities (is_active, score DESC)`,
}

// Initialize creates the connection pool and, when configured, bootstraps the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.BootstrapSchema {
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// EnsureSchema creates any missing tables and indexes in one transaction
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTransaction(ctx, func(ctx context.Context) error {
		q := db.Querier(ctx)
		for i, stmt := range schemaStatements {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
			}
		}
		return nil
	})
}
