package dto

import (
	"github.com/shopspring/decimal"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// BalanceDetail is one pairwise balance as seen from the ledger owner's side.
type BalanceDetail struct {
	CounterpartyID           string          `json:"counterpartyID"`
	AmountOwedToCounterparty decimal.Decimal `json:"amountOwedToCounterparty"`
	AmountOwedByCounterparty decimal.Decimal `json:"amountOwedByCounterparty"`
}

// BalanceSheetResponse is the full per-user ledger view.
type BalanceSheetResponse struct {
	UserID          string          `json:"userID"`
	TotalPayment    decimal.Decimal `json:"totalPayment"`
	TotalYouOwe     decimal.Decimal `json:"totalYouOwe"`
	TotalYouGetBack decimal.Decimal `json:"totalYouGetBack"`
	Balances        []BalanceDetail `json:"balances"`
}

// OutstandingBalanceResponse is the net-position view of a ledger.
type OutstandingBalanceResponse struct {
	UserID                  string          `json:"userID"`
	TotalOutstandingOwe     decimal.Decimal `json:"totalOutstandingOwe"`
	TotalOutstandingReceive decimal.Decimal `json:"totalOutstandingReceive"`
	NetOutstanding          decimal.Decimal `json:"netOutstanding"` // Positive = net receiver
}

// UserBalanceSummaryResponse is the compact ledger summary for list views.
type UserBalanceSummaryResponse struct {
	UserID     string          `json:"userID"`
	UserName   string          `json:"userName"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// ToBalanceSheetResponse converts a domain.Ledger to BalanceSheetResponse DTO.
func ToBalanceSheetResponse(ledger *domain.Ledger) BalanceSheetResponse {
	balances := make([]BalanceDetail, 0, len(ledger.Balances))
	for _, b := range ledger.SortedBalances() {
		balances = append(balances, BalanceDetail{
			CounterpartyID:           b.CounterpartyID,
			AmountOwedToCounterparty: b.AmountOwedToCounterparty,
			AmountOwedByCounterparty: b.AmountOwedByCounterparty,
		})
	}
	return BalanceSheetResponse{
		UserID:          ledger.UserID,
		TotalPayment:    ledger.TotalPayment,
		TotalYouOwe:     ledger.TotalYouOwe,
		TotalYouGetBack: ledger.TotalYouGetBack,
		Balances:        balances,
	}
}

// ToOutstandingBalanceResponse converts a domain.Ledger to its net-position view.
func ToOutstandingBalanceResponse(ledger *domain.Ledger) OutstandingBalanceResponse {
	return OutstandingBalanceResponse{
		UserID:                  ledger.UserID,
		TotalOutstandingOwe:     ledger.TotalYouOwe,
		TotalOutstandingReceive: ledger.TotalYouGetBack,
		NetOutstanding:          ledger.NetOutstanding(),
	}
}

// ToUserBalanceSummaryResponse combines user identity and ledger into the
// compact summary view.
func ToUserBalanceSummaryResponse(user *domain.User, ledger *domain.Ledger) UserBalanceSummaryResponse {
	return UserBalanceSummaryResponse{
		UserID:     user.UserID,
		UserName:   user.Name,
		NetBalance: ledger.NetOutstanding(),
	}
}
