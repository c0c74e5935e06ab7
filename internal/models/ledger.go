package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger mirrors a row of the ledgers table, one per user.
type Ledger struct {
	UserID          string          `json:"userID" db:"user_id"`
	TotalPayment    decimal.Decimal `json:"totalPayment" db:"total_payment"`
	TotalYouOwe     decimal.Decimal `json:"totalYouOwe" db:"total_you_owe"`
	TotalYouGetBack decimal.Decimal `json:"totalYouGetBack" db:"total_you_get_back"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt" db:"last_updated_at"`
}

// PairwiseBalance mirrors a row of the pairwise_balances table. Each row is
// one direction of a user pair, owned by user_id.
type PairwiseBalance struct {
	UserID         string          `json:"userID" db:"user_id"`
	CounterpartyID string          `json:"counterpartyID" db:"counterparty_id"`
	AmountOwedTo   decimal.Decimal `json:"amountOwedTo" db:"amount_owed_to"`
	AmountOwedBy   decimal.Decimal `json:"amountOwedBy" db:"amount_owed_by"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt" db:"last_updated_at"`
}
