package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitPolicy selects the rule used to partition an expense total among its
// participants. The set is closed; anything else is rejected by the split
// service.
type SplitPolicy string

const (
	SplitEqual      SplitPolicy = "EQUAL"
	SplitExact      SplitPolicy = "EXACT"
	SplitUnequal    SplitPolicy = "UNEQUAL"
	SplitPercentage SplitPolicy = "PERCENTAGE"
)

// Payment records that one user paid part (or all) of an expense.
type Payment struct {
	UserID     string          `json:"userID"`
	AmountPaid decimal.Decimal `json:"amountPaid"` // >= 0
}

// SplitLine records how much one participant owes for an expense.
type SplitLine struct {
	UserID     string          `json:"userID"`
	AmountOwed decimal.Decimal `json:"amountOwed"` // >= 0
}

// Expense represents a single shared expense: who paid, and who owes what.
//
// Invariants (within AmountTolerance): sum of payments equals TotalAmount,
// and sum of split lines equals TotalAmount.
type Expense struct {
	ExpenseID   string          `json:"expenseID"` // Primary Key (e.g., "EXP-1A2B3C4D")
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"totalAmount"` // > 0
	SplitPolicy SplitPolicy     `json:"splitPolicy"`
	GroupID     string          `json:"groupID,omitempty"` // Optional FK -> Group
	Payments    []Payment       `json:"payments"`          // At least one
	Splits      []SplitLine     `json:"splits"`            // One per participant
	ExpenseDate time.Time       `json:"expenseDate"`
	AuditFields
}
