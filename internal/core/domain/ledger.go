package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PairwiseBalance is the bidirectional owed-amount record between a ledger's
// owner and exactly one counterparty. A ledger holds at most one record per
// counterparty; Ledger.Balance enforces that with get-or-create semantics.
type PairwiseBalance struct {
	CounterpartyID           string          `json:"counterpartyID"`
	AmountOwedToCounterparty decimal.Decimal `json:"amountOwedToCounterparty"` // Owner owes counterparty
	AmountOwedByCounterparty decimal.Decimal `json:"amountOwedByCounterparty"` // Counterparty owes owner
}

// Ledger is the per-user aggregate of lifetime payments, owed amounts and
// pairwise balances. It is created lazily the first time a user is touched by
// an expense; a fresh ledger is fully zeroed and indistinguishable from one
// that settled back to zero.
type Ledger struct {
	UserID          string                      `json:"userID"`
	TotalPayment    decimal.Decimal             `json:"totalPayment"`    // Lifetime sum paid
	TotalYouOwe     decimal.Decimal             `json:"totalYouOwe"`     // Lifetime sum owed to others
	TotalYouGetBack decimal.Decimal             `json:"totalYouGetBack"` // Lifetime sum others owe
	Balances        map[string]*PairwiseBalance `json:"-"`               // Keyed by counterparty UserID
}

// NewLedger returns a zero-valued ledger for the given user.
func NewLedger(userID string) *Ledger {
	return &Ledger{
		UserID:          userID,
		TotalPayment:    decimal.Zero,
		TotalYouOwe:     decimal.Zero,
		TotalYouGetBack: decimal.Zero,
		Balances:        make(map[string]*PairwiseBalance),
	}
}

// Balance returns the pairwise balance against the given counterparty,
// creating a zeroed record on first access.
func (l *Ledger) Balance(counterpartyID string) *PairwiseBalance {
	if l.Balances == nil {
		l.Balances = make(map[string]*PairwiseBalance)
	}
	b, ok := l.Balances[counterpartyID]
	if !ok {
		b = &PairwiseBalance{
			CounterpartyID:           counterpartyID,
			AmountOwedToCounterparty: decimal.Zero,
			AmountOwedByCounterparty: decimal.Zero,
		}
		l.Balances[counterpartyID] = b
	}
	return b
}

// NetOutstanding is the derived net position of the ledger owner:
// positive means the owner is a net receiver.
func (l *Ledger) NetOutstanding() decimal.Decimal {
	return l.TotalYouGetBack.Sub(l.TotalYouOwe)
}

// SortedBalances returns the pairwise balances ordered by counterparty ID,
// for deterministic persistence and API output.
func (l *Ledger) SortedBalances() []*PairwiseBalance {
	out := make([]*PairwiseBalance, 0, len(l.Balances))
	for _, b := range l.Balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CounterpartyID < out[j].CounterpartyID })
	return out
}
