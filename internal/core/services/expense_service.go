package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
	"github.com/splitclub/split_expense_app/internal/dto"
	"github.com/splitclub/split_expense_app/internal/middleware"
)

// Expense validation errors, all mapped to HTTP 400 via apperrors.ErrValidation.
var (
	ErrPaymentsTotalMismatch = fmt.Errorf("%w: total payments must equal the expense amount", apperrors.ErrValidation)
	ErrSplitDetailsMissing   = fmt.Errorf("%w: split details are required for this split type", apperrors.ErrValidation)
	ErrNegativeAmount        = fmt.Errorf("%w: paid and owed amounts must not be negative", apperrors.ErrValidation)
)

// expenseService orchestrates expense recording: it validates the request,
// asks the split engine for the owed amounts, persists the expense, and hands
// the result to the ledger engine.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
	userSvc     portssvc.UserSvcFacade
	groupSvc    portssvc.GroupSvcFacade
	splitSvc    portssvc.SplitSvcFacade
	ledgerSvc   portssvc.LedgerSvcFacade
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, userSvc portssvc.UserSvcFacade, groupSvc portssvc.GroupSvcFacade, splitSvc portssvc.SplitSvcFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
		userSvc:     userSvc,
		groupSvc:    groupSvc,
		splitSvc:    splitSvc,
		ledgerSvc:   ledgerSvc,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// generateExpenseID produces ids like "EXP-1A2B3C4D".
func generateExpenseID() string {
	return "EXP-" + strings.ToUpper(uuid.NewString()[:8])
}

// buildPayments validates the payment details and resolves every payer.
// A payer listed more than once is collapsed into a single payment carrying
// the summed amount; the expense persists one payment row per payer.
func (s *expenseService) buildPayments(ctx context.Context, details []dto.PaymentDetail) ([]domain.Payment, error) {
	payments := make([]domain.Payment, 0, len(details))
	index := make(map[string]int, len(details))
	for _, detail := range details {
		if detail.AmountPaid.IsNegative() {
			return nil, fmt.Errorf("%w: payment by %s", ErrNegativeAmount, detail.UserID)
		}
		if i, seen := index[detail.UserID]; seen {
			payments[i].AmountPaid = payments[i].AmountPaid.Add(detail.AmountPaid)
			continue
		}
		if _, err := s.userSvc.GetUserByID(ctx, detail.UserID); err != nil {
			return nil, fmt.Errorf("payer %s: %w", detail.UserID, err)
		}
		index[detail.UserID] = len(payments)
		payments = append(payments, domain.Payment{UserID: detail.UserID, AmountPaid: detail.AmountPaid})
	}
	return payments, nil
}

// buildSplits resolves the participants for the requested policy and runs the
// split engine.
func (s *expenseService) buildSplits(ctx context.Context, req dto.CreateExpenseRequest) ([]domain.SplitLine, error) {
	var participants []string
	var amounts []decimal.Decimal

	// A participant listed more than once is collapsed into a single split
	// line; shares and percentages of duplicates are summed. The expense
	// persists one split row per participant.
	index := make(map[string]int)
	if req.SplitType == domain.SplitEqual {
		for _, userID := range req.UserIDs {
			if _, seen := index[userID]; seen {
				continue
			}
			index[userID] = len(participants)
			participants = append(participants, userID)
		}
	} else {
		if len(req.Splits) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrSplitDetailsMissing, req.SplitType)
		}
		for _, detail := range req.Splits {
			if detail.Amount.IsNegative() {
				return nil, fmt.Errorf("%w: split for %s", ErrNegativeAmount, detail.UserID)
			}
			if i, seen := index[detail.UserID]; seen {
				amounts[i] = amounts[i].Add(detail.Amount)
				continue
			}
			index[detail.UserID] = len(participants)
			participants = append(participants, detail.UserID)
			amounts = append(amounts, detail.Amount)
		}
	}

	for _, userID := range participants {
		if _, err := s.userSvc.GetUserByID(ctx, userID); err != nil {
			return nil, fmt.Errorf("participant %s: %w", userID, err)
		}
	}

	splits, err := s.splitSvc.ComputeSplits(req.SplitType, participants, amounts, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	// EXACT and UNEQUAL amounts arrive pre-built from the caller; re-check
	// the sum before anything is persisted.
	if req.SplitType == domain.SplitExact || req.SplitType == domain.SplitUnequal {
		if err := s.splitSvc.ValidateSplitRequest(splits, req.TotalAmount); err != nil {
			return nil, err
		}
	}
	return splits, nil
}

// CreateExpense implements portssvc.ExpenseSvcFacade.
func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}

	expenseID := req.ExpenseID
	if expenseID == "" {
		expenseID = generateExpenseID()
	}

	payments, err := s.buildPayments(ctx, req.Payments)
	if err != nil {
		return nil, err
	}

	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.AmountPaid)
	}
	if !domain.AmountsMatch(totalPaid, req.TotalAmount) {
		return nil, fmt.Errorf("%w: paid %s vs total %s", ErrPaymentsTotalMismatch, totalPaid, req.TotalAmount)
	}

	splits, err := s.buildSplits(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.GroupID != "" {
		if _, err := s.groupSvc.GetGroupByID(ctx, req.GroupID); err != nil {
			return nil, fmt.Errorf("group %s: %w", req.GroupID, err)
		}
	}

	now := time.Now().UTC()
	expense := domain.Expense{
		ExpenseID:   expenseID,
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		SplitPolicy: req.SplitType,
		GroupID:     req.GroupID,
		Payments:    payments,
		Splits:      splits,
		ExpenseDate: now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     payments[0].UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: payments[0].UserID,
		},
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		return nil, err
	}

	if _, err := s.ledgerSvc.ApplyExpense(ctx, payments, splits, req.TotalAmount); err != nil {
		logger.Error("Failed to fold expense into ledgers", slog.String("expense_id", expenseID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Expense created", slog.String("expense_id", expenseID), slog.String("split_type", string(req.SplitType)))
	return &expense, nil
}

// GetExpenseByID implements portssvc.ExpenseSvcFacade.
func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	return s.expenseRepo.FindExpenseByID(ctx, expenseID)
}

// ListExpenses implements portssvc.ExpenseSvcFacade.
func (s *expenseService) ListExpenses(ctx context.Context, limit, offset int) ([]domain.Expense, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.expenseRepo.FindExpenses(ctx, limit, offset)
}

// ListExpensesByGroup implements portssvc.ExpenseSvcFacade.
func (s *expenseService) ListExpensesByGroup(ctx context.Context, groupID string) ([]domain.Expense, error) {
	if _, err := s.groupSvc.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.expenseRepo.FindExpensesByGroup(ctx, groupID)
}

// ListExpensesByUser implements portssvc.ExpenseSvcFacade.
func (s *expenseService) ListExpensesByUser(ctx context.Context, userID string) ([]dto.UserExpenseResponse, error) {
	if _, err := s.userSvc.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindExpensesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserExpenseResponse, len(expenses))
	for i := range expenses {
		expense := &expenses[i]
		paid := decimal.Zero
		for _, p := range expense.Payments {
			if p.UserID == userID {
				paid = paid.Add(p.AmountPaid)
			}
		}
		owed := decimal.Zero
		for _, line := range expense.Splits {
			if line.UserID == userID {
				owed = owed.Add(line.AmountOwed)
			}
		}
		responses[i] = dto.UserExpenseResponse{
			ExpenseResponse: dto.ToExpenseResponse(expense),
			UserShare:       paid.Sub(owed),
		}
	}
	return responses, nil
}
