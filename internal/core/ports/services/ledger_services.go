package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// LedgerSvcFacade defines the balance ledger engine.
type LedgerSvcFacade interface {
	// ApplyExpense folds one validated expense (payments plus splits) into the
	// ledgers of every involved user and returns the updated ledgers, sorted
	// by user ID. The fold is all-or-nothing: on error no ledger is mutated.
	ApplyExpense(ctx context.Context, payments []domain.Payment, splits []domain.SplitLine, totalAmount decimal.Decimal) ([]*domain.Ledger, error)

	// GetLedger retrieves a user's ledger. A user never touched by an expense
	// gets a fresh zero-valued ledger; nothing is persisted by the read.
	GetLedger(ctx context.Context, userID string) (*domain.Ledger, error)
}
