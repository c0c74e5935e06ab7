package services

import (
	"github.com/shopspring/decimal"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// SplitSvcFacade defines the split engine: pure computation, no I/O.
type SplitSvcFacade interface {
	// ComputeSplits partitions total among the participants under the given
	// policy and returns one validated split line per participant.
	//
	// The amounts argument is policy-dependent: ignored for EQUAL, exact owed
	// amounts for EXACT and UNEQUAL, percentages for PERCENTAGE. For the
	// latter three it must be index-aligned with participants.
	ComputeSplits(policy domain.SplitPolicy, participants []string, amounts []decimal.Decimal, total decimal.Decimal) ([]domain.SplitLine, error)

	// ValidateSplitRequest re-checks that an already-constructed split list
	// sums to total within tolerance.
	ValidateSplitRequest(splits []domain.SplitLine, total decimal.Decimal) error
}
