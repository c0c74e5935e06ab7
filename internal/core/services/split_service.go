package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
)

// Split engine errors. All wrap apperrors.ErrValidation so the HTTP layer
// can map them with a single errors.Is check.
var (
	ErrEmptyParticipants   = fmt.Errorf("%w: split must have at least one participant", apperrors.ErrValidation)
	ErrSplitCountMismatch  = fmt.Errorf("%w: number of participants must match number of split amounts", apperrors.ErrValidation)
	ErrSplitAmountMismatch = fmt.Errorf("%w: split amounts do not sum to the expense total", apperrors.ErrValidation)
	ErrPercentageMismatch  = fmt.Errorf("%w: split percentages do not sum to 100", apperrors.ErrValidation)
	ErrInvalidSplitPolicy  = fmt.Errorf("%w: unknown split policy", apperrors.ErrValidation)
)

var hundred = decimal.NewFromInt(100)

// splitStrategy computes the split lines for one policy. Implementations are
// pure functions over normalized inputs.
type splitStrategy interface {
	computeSplits(participants []string, amounts []decimal.Decimal, total decimal.Decimal) ([]domain.SplitLine, error)
}

// splitService implements the split engine: a strategy lookup over the closed
// policy set, plus a defensive re-check for pre-built split lists.
type splitService struct {
	strategies map[domain.SplitPolicy]splitStrategy
}

// NewSplitService creates the split engine with all supported policies wired.
func NewSplitService() portssvc.SplitSvcFacade {
	return &splitService{
		strategies: map[domain.SplitPolicy]splitStrategy{
			domain.SplitEqual:      equalSplit{},
			domain.SplitExact:      exactSplit{},
			domain.SplitUnequal:    exactSplit{}, // Same computation, distinct caller intent
			domain.SplitPercentage: percentageSplit{},
		},
	}
}

var _ portssvc.SplitSvcFacade = (*splitService)(nil)

// ComputeSplits implements portssvc.SplitSvcFacade.
func (s *splitService) ComputeSplits(policy domain.SplitPolicy, participants []string, amounts []decimal.Decimal, total decimal.Decimal) ([]domain.SplitLine, error) {
	strategy, ok := s.strategies[policy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSplitPolicy, policy)
	}
	return strategy.computeSplits(participants, amounts, total)
}

// ValidateSplitRequest implements portssvc.SplitSvcFacade.
func (s *splitService) ValidateSplitRequest(splits []domain.SplitLine, total decimal.Decimal) error {
	sum := decimal.Zero
	for _, line := range splits {
		sum = sum.Add(line.AmountOwed)
	}
	if !domain.AmountsMatch(sum, total) {
		return fmt.Errorf("%w: split sum %s vs total %s", ErrSplitAmountMismatch, sum, total)
	}
	return nil
}

// equalSplit divides the total evenly among all participants. Amounts are
// ignored.
type equalSplit struct{}

func (equalSplit) computeSplits(participants []string, _ []decimal.Decimal, total decimal.Decimal) ([]domain.SplitLine, error) {
	if len(participants) == 0 {
		return nil, ErrEmptyParticipants
	}
	perUser := total.Div(decimal.NewFromInt(int64(len(participants))))
	splits := make([]domain.SplitLine, len(participants))
	for i, userID := range participants {
		splits[i] = domain.SplitLine{UserID: userID, AmountOwed: perUser}
	}
	return splits, nil
}

// exactSplit takes the caller-supplied amounts as given, requiring only that
// they align with the participants and sum to the total.
type exactSplit struct{}

func (exactSplit) computeSplits(participants []string, amounts []decimal.Decimal, total decimal.Decimal) ([]domain.SplitLine, error) {
	if len(participants) == 0 {
		return nil, ErrEmptyParticipants
	}
	if len(participants) != len(amounts) {
		return nil, fmt.Errorf("%w: %d participants vs %d amounts", ErrSplitCountMismatch, len(participants), len(amounts))
	}
	sum := decimal.Zero
	for _, amount := range amounts {
		sum = sum.Add(amount)
	}
	if !domain.AmountsMatch(sum, total) {
		return nil, fmt.Errorf("%w: split sum %s vs total %s", ErrSplitAmountMismatch, sum, total)
	}
	splits := make([]domain.SplitLine, len(participants))
	for i, userID := range participants {
		splits[i] = domain.SplitLine{UserID: userID, AmountOwed: amounts[i]}
	}
	return splits, nil
}

// percentageSplit interprets amounts as percentages of the total, which must
// sum to 100.
type percentageSplit struct{}

func (percentageSplit) computeSplits(participants []string, percents []decimal.Decimal, total decimal.Decimal) ([]domain.SplitLine, error) {
	if len(participants) == 0 {
		return nil, ErrEmptyParticipants
	}
	if len(participants) != len(percents) {
		return nil, fmt.Errorf("%w: %d participants vs %d percentages", ErrSplitCountMismatch, len(participants), len(percents))
	}
	sum := decimal.Zero
	for _, percent := range percents {
		sum = sum.Add(percent)
	}
	if !domain.AmountsMatch(sum, hundred) {
		return nil, fmt.Errorf("%w: percentages sum to %s", ErrPercentageMismatch, sum)
	}
	splits := make([]domain.SplitLine, len(participants))
	for i, userID := range participants {
		splits[i] = domain.SplitLine{
			UserID:     userID,
			AmountOwed: percents[i].Div(hundred).Mul(total),
		}
	}
	return splits, nil
}
