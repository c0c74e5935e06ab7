package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
	"github.com/splitclub/split_expense_app/internal/middleware"
)

// ErrNoPayments indicates an expense whose payments are absent or sum to
// zero; the proportional distribution would otherwise divide by zero.
var ErrNoPayments = fmt.Errorf("%w: expense must have payments with a positive total", apperrors.ErrValidation)

// ledgerService implements the balance ledger engine: it folds validated
// expenses into per-user ledgers using multi-payer proportional distribution.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade

	// Per-user locks serialize expense folds that touch the same ledger.
	// One fold locks every involved user in sorted order, so two concurrent
	// folds can never circular-wait.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewLedgerService creates a new ledger engine backed by the given repository.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		userLocks:  make(map[string]*sync.Mutex),
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// lockUsers acquires the per-user locks for the given IDs in sorted order and
// returns a function releasing them in reverse.
func (s *ledgerService) lockUsers(userIDs []string) func() {
	sorted := make([]string, len(userIDs))
	copy(sorted, userIDs)
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, len(sorted))
	s.mu.Lock()
	for i, id := range sorted {
		lock, ok := s.userLocks[id]
		if !ok {
			lock = &sync.Mutex{}
			s.userLocks[id] = lock
		}
		locks[i] = lock
	}
	s.mu.Unlock()

	for _, lock := range locks {
		lock.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// aggregatePayments collapses the payment list into one amount per payer
// (repeated entries are summed) and returns the overall total paid.
func aggregatePayments(payments []domain.Payment) (map[string]decimal.Decimal, decimal.Decimal) {
	paidBy := make(map[string]decimal.Decimal, len(payments))
	totalPaid := decimal.Zero
	for _, p := range payments {
		paidBy[p.UserID] = paidBy[p.UserID].Add(p.AmountPaid)
		totalPaid = totalPaid.Add(p.AmountPaid)
	}
	return paidBy, totalPaid
}

// foldExpense applies one expense to the given ledgers, in memory.
//
// Each payer's TotalPayment grows by what they paid. Each split line adds its
// full owed amount to the owing user's TotalYouOwe, then distributes that
// amount among the other payers in proportion to each payer's share of
// totalPaid, updating TotalYouGetBack and both sides of the pairwise balance.
// A payer who also owes is excluded only from the pairwise entry against
// themself; their own owed amount stays whole.
func foldExpense(ledgers map[string]*domain.Ledger, paidBy map[string]decimal.Decimal, totalPaid decimal.Decimal, splits []domain.SplitLine) {
	// Deterministic payer iteration keeps rounding drift reproducible.
	payerIDs := make([]string, 0, len(paidBy))
	for payerID := range paidBy {
		payerIDs = append(payerIDs, payerID)
	}
	sort.Strings(payerIDs)

	for _, payerID := range payerIDs {
		ledger := ledgers[payerID]
		ledger.TotalPayment = ledger.TotalPayment.Add(paidBy[payerID])
	}

	for _, split := range splits {
		oweLedger := ledgers[split.UserID]
		oweLedger.TotalYouOwe = oweLedger.TotalYouOwe.Add(split.AmountOwed)

		for _, payerID := range payerIDs {
			if payerID == split.UserID {
				continue
			}
			// Proportional to the payer's contribution, over totalPaid rather
			// than the expense total: the two differ only within tolerance.
			payerShare := split.AmountOwed.Mul(paidBy[payerID]).Div(totalPaid)

			payerLedger := ledgers[payerID]
			payerLedger.TotalYouGetBack = payerLedger.TotalYouGetBack.Add(payerShare)

			owedToPayer := payerLedger.Balance(split.UserID)
			owedToPayer.AmountOwedByCounterparty = owedToPayer.AmountOwedByCounterparty.Add(payerShare)

			owedByOwer := oweLedger.Balance(payerID)
			owedByOwer.AmountOwedToCounterparty = owedByOwer.AmountOwedToCounterparty.Add(payerShare)
		}
	}
}

// ApplyExpense implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ApplyExpense(ctx context.Context, payments []domain.Payment, splits []domain.SplitLine, totalAmount decimal.Decimal) ([]*domain.Ledger, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	paidBy, totalPaid := aggregatePayments(payments)
	if len(paidBy) == 0 || !totalPaid.IsPositive() {
		return nil, ErrNoPayments
	}

	// Every payer and every owing participant gets touched.
	involvedSet := make(map[string]struct{}, len(paidBy)+len(splits))
	for payerID := range paidBy {
		involvedSet[payerID] = struct{}{}
	}
	for _, split := range splits {
		involvedSet[split.UserID] = struct{}{}
	}
	involved := make([]string, 0, len(involvedSet))
	for userID := range involvedSet {
		involved = append(involved, userID)
	}
	sort.Strings(involved)

	unlock := s.lockUsers(involved)
	defer unlock()

	ledgers, err := s.ledgerRepo.FindLedgersByUserIDs(ctx, involved)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledgers: %w", err)
	}
	for _, userID := range involved {
		if _, ok := ledgers[userID]; !ok {
			// First expense for this user: ledger materializes lazily.
			ledgers[userID] = domain.NewLedger(userID)
		}
	}

	foldExpense(ledgers, paidBy, totalPaid, splits)

	updated := make([]*domain.Ledger, 0, len(involved))
	for _, userID := range involved {
		updated = append(updated, ledgers[userID])
	}
	if err := s.ledgerRepo.SaveLedgers(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save ledgers: %w", err)
	}

	logger.Info("Expense folded into ledgers",
		slog.Int("user_count", len(updated)),
		slog.String("total_amount", totalAmount.String()),
		slog.String("total_paid", totalPaid.String()),
	)
	return updated, nil
}

// GetLedger implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetLedger(ctx context.Context, userID string) (*domain.Ledger, error) {
	unlock := s.lockUsers([]string{userID})
	defer unlock()

	ledger, err := s.ledgerRepo.FindLedgerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Untouched user: a zero ledger, not persisted by the read.
			return domain.NewLedger(userID), nil
		}
		return nil, fmt.Errorf("failed to load ledger for user %s: %w", userID, err)
	}
	return ledger, nil
}
