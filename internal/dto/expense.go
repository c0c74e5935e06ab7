package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// PaymentDetail describes one payer's contribution towards an expense.
type PaymentDetail struct {
	UserID     string          `json:"userID" binding:"required"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
}

// SplitDetail describes one participant's share of an expense. The meaning of
// Amount depends on the split type: an owed amount for EXACT/UNEQUAL, a
// percentage for PERCENTAGE. EQUAL splits carry participants in
// CreateExpenseRequest.UserIDs instead.
type SplitDetail struct {
	UserID string          `json:"userID" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateExpenseRequest defines the data needed to record a new expense.
type CreateExpenseRequest struct {
	ExpenseID   string             `json:"expenseID"` // Optional, generated when empty
	Description string             `json:"description" binding:"required"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	SplitType   domain.SplitPolicy `json:"splitType" binding:"required"`
	Payments    []PaymentDetail    `json:"payments" binding:"required,min=1,dive"`
	Splits      []SplitDetail      `json:"splits" binding:"omitempty,dive"` // EXACT/UNEQUAL/PERCENTAGE
	UserIDs     []string           `json:"userIDs"`                         // EQUAL participants
	GroupID     string             `json:"groupID"`                         // Optional
}

// ExpenseResponse defines the expense data returned by the API.
type ExpenseResponse struct {
	ExpenseID   string             `json:"expenseID"`
	Description string             `json:"description"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	SplitType   domain.SplitPolicy `json:"splitType"`
	Payments    []PaymentDetail    `json:"payments"`
	Splits      []SplitDetail      `json:"splits"`
	GroupID     string             `json:"groupID,omitempty"`
	ExpenseDate time.Time          `json:"expenseDate"`
}

// UserExpenseResponse is an ExpenseResponse annotated with one user's net
// share of the expense: amount paid minus amount owed (positive means the
// user gets money back).
type UserExpenseResponse struct {
	ExpenseResponse
	UserShare decimal.Decimal `json:"userShare"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListExpensesResponse wraps the list of expenses.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO.
func ToExpenseResponse(expense *domain.Expense) ExpenseResponse {
	payments := make([]PaymentDetail, len(expense.Payments))
	for i, p := range expense.Payments {
		payments[i] = PaymentDetail{UserID: p.UserID, AmountPaid: p.AmountPaid}
	}
	splits := make([]SplitDetail, len(expense.Splits))
	for i, s := range expense.Splits {
		splits[i] = SplitDetail{UserID: s.UserID, Amount: s.AmountOwed}
	}
	return ExpenseResponse{
		ExpenseID:   expense.ExpenseID,
		Description: expense.Description,
		TotalAmount: expense.TotalAmount,
		SplitType:   expense.SplitPolicy,
		Payments:    payments,
		Splits:      splits,
		GroupID:     expense.GroupID,
		ExpenseDate: expense.ExpenseDate,
	}
}

// ToListExpensesResponse converts a slice of domain.Expense to ListExpensesResponse DTO
func ToListExpensesResponse(expenses []domain.Expense) ListExpensesResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i, expense := range expenses {
		responses[i] = ToExpenseResponse(&expense)
	}
	return ListExpensesResponse{
		Expenses: responses,
	}
}
