package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourusername/options-edge/internal/pricing"
)

var validate = validator.New()

// ContractSpec is the immutable identity of a listed option contract
type ContractSpec struct {
	ID             uuid.UUID          `db:"id" json:"id" validate:"required"`
	Symbol         string             `db:"symbol" json:"symbol" validate:"required"`
	ContractSymbol string             `db:"contract_symbol" json:"contract_symbol" validate:"required"`
	StrikePrice    float64            `db:"strike_price" json:"strike_price" validate:"gt=0"`
	Kind           pricing.OptionKind `db:"option_type" json:"option_type" validate:"oneof=call put"`
	ExpiryDate     time.Time          `db:"expiry_date" json:"expiry_date" validate:"required"`
	Active         bool               `db:"is_active" json:"is_active"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// Validate checks the contract identity fields
func (c *ContractSpec) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContract, err)
	}
	return nil
}

// IsExpired reports whether the contract has expired at now
func (c *ContractSpec) IsExpired(now time.Time) bool {
	return !c.ExpiryDate.After(now)
}

// Moneyness is spot/strike for calls and strike/spot for puts
func (c *ContractSpec) Moneyness(underlying float64) float64 {
	if underlying <= 0 || c.StrikePrice <= 0 {
		return 0
	}
	if c.Kind.IsCall() {
		return underlying / c.StrikePrice
	}
	return c.StrikePrice / underlying
}

// Label renders "AAPL CALL $150 exp 01/17" style descriptions
func (c *ContractSpec) Label() string {
	return fmt.Sprintf("%s $%.0f exp %s", kindUpper(c.Kind), c.StrikePrice, c.ExpiryDate.Format("01/02"))
}

func kindUpper(k pricing.OptionKind) string {
	if k.IsCall() {
		return "CALL"
	}
	return "PUT"
}
