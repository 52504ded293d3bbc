package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Opportunity types emitted by the detectors
const (
	OpportunityPremiumSell   = "premium_sell"
	OpportunityPremiumBuy    = "premium_buy"
	OpportunityGammaScalp    = "gamma_scalp"
	OpportunityOverpriced    = "overpriced"
	OpportunityUnderpriced   = "underpriced"
	OpportunityHighDelta     = "high_delta"
	OpportunityHighIV        = "high_iv"
	OpportunityLowIV         = "low_iv"
	OpportunityUnusualVolume = "unusual_volume"
	OpportunityHighTimeValue = "high_time_value"
)

// Opportunity is a persisted detection. Identity is (ContractID, OpportunityType).
type Opportunity struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ContractID      uuid.UUID `db:"contract_id" json:"contract_id"`
	OpportunityType string    `db:"opportunity_type" json:"opportunity_type"`
	Score           float64   `db:"score" json:"score"`
	Description     string    `db:"description" json:"description"`
	Active          bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Candidate is a detector result before persistence
type Candidate struct {
	ContractID      uuid.UUID          `json:"contract_id"`
	ContractSymbol  string             `json:"contract_symbol"`
	Symbol          string             `json:"symbol"`
	Detector        string             `json:"detector"`
	OpportunityType string             `json:"opportunity_type"`
	Score           float64            `json:"score"`
	Description     string             `json:"description"`
	Metadata        map[string]float64 `json:"metadata,omitempty"`
	DetectedAt      time.Time          `json:"detected_at"`
}

// Key returns the persistence identity of the candidate
func (c *Candidate) Key() string {
	return fmt.Sprintf("%s:%s", c.ContractID, c.OpportunityType)
}

// ToOpportunity converts the candidate into an active opportunity record
func (c *Candidate) ToOpportunity() *Opportunity {
	return &Opportunity{
		ID:              uuid.New(),
		ContractID:      c.ContractID,
		OpportunityType: c.OpportunityType,
		Score:           c.Score,
		Description:     c.Description,
		Active:          true,
		CreatedAt:       c.DetectedAt,
		UpdatedAt:       c.DetectedAt,
	}
}

// ActiveOpportunity joins an active opportunity with its contract for reporting
type ActiveOpportunity struct {
	Opportunity
	Symbol         string    `db:"symbol" json:"symbol"`
	ContractSymbol string    `db:"contract_symbol" json:"contract_symbol"`
	Kind           string    `db:"option_type" json:"option_type"`
	StrikePrice    float64   `db:"strike_price" json:"strike_price"`
	ExpiryDate     time.Time `db:"expiry_date" json:"expiry_date"`
}
