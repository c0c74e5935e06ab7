package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense mirrors a row of the expenses table. The per-user payments and
// owed shares live in expense_payments and expense_splits.
type Expense struct {
	ExpenseID   string          `json:"expenseID" db:"expense_id"`
	Description string          `json:"description" db:"description"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	SplitType   string          `json:"splitType" db:"split_type"`
	GroupID     *string         `json:"groupID,omitempty" db:"group_id"` // NULL when not tied to a group
	ExpenseDate time.Time       `json:"expenseDate" db:"expense_date"`
	AuditFields
}

// ExpensePayment mirrors a row of the expense_payments table.
type ExpensePayment struct {
	ExpenseID  string          `json:"expenseID" db:"expense_id"`
	UserID     string          `json:"userID" db:"user_id"`
	AmountPaid decimal.Decimal `json:"amountPaid" db:"amount_paid"`
}

// ExpenseSplit mirrors a row of the expense_splits table.
type ExpenseSplit struct {
	ExpenseID  string          `json:"expenseID" db:"expense_id"`
	UserID     string          `json:"userID" db:"user_id"`
	AmountOwed decimal.Decimal `json:"amountOwed" db:"amount_owed"`
}
