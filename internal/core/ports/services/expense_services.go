package services

import (
	"context"

	"github.com/splitclub/split_expense_app/internal/core/domain"
	"github.com/splitclub/split_expense_app/internal/dto"
)

// ExpenseSvcFacade defines the operations offered by the expense service,
// which composes the split engine and the ledger engine.
type ExpenseSvcFacade interface {
	// CreateExpense validates the request, computes splits under the requested
	// policy, persists the expense and folds it into the involved ledgers.
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest) (*domain.Expense, error)

	// GetExpenseByID retrieves an expense with its payments and splits.
	GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a paginated list of expenses, newest first.
	ListExpenses(ctx context.Context, limit, offset int) ([]domain.Expense, error)

	// ListExpensesByGroup retrieves the expenses tagged with a group.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]domain.Expense, error)

	// ListExpensesByUser retrieves the expenses a user paid for or owes on,
	// newest first, each annotated with the user's net share.
	ListExpensesByUser(ctx context.Context, userID string) ([]dto.UserExpenseResponse, error)
}
