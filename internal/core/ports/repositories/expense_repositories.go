package repositories

import (
	"context"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense with its payments and splits.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// FindExpenses retrieves a paginated list of expenses, newest first.
	FindExpenses(ctx context.Context, limit int, offset int) ([]domain.Expense, error)

	// FindExpensesByGroup retrieves all expenses tagged with a group, newest first.
	FindExpensesByGroup(ctx context.Context, groupID string) ([]domain.Expense, error)

	// FindExpensesByUser retrieves all expenses in which the user appears as a
	// payer or as an owing participant, newest first, without duplicates.
	FindExpensesByUser(ctx context.Context, userID string) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists an expense together with its payments and splits
	// in a single database transaction. A duplicate expense ID surfaces as
	// apperrors.ErrDuplicate.
	SaveExpense(ctx context.Context, expense domain.Expense) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
