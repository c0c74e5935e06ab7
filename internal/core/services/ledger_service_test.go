package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	"github.com/splitclub/split_expense_app/internal/core/services"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindLedgerByUserID(ctx context.Context, userID string) (*domain.Ledger, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindLedgersByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Ledger, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) SaveLedgers(ctx context.Context, ledgers []*domain.Ledger) error {
	args := m.Called(ctx, ledgers)
	return args.Error(0)
}

// memLedgerRepo is a stateful in-memory repository for multi-expense
// sequences, where canned mock returns would get unwieldy.
type memLedgerRepo struct {
	ledgers map[string]*domain.Ledger
	saves   int
}

var _ portsrepo.LedgerRepositoryFacade = (*memLedgerRepo)(nil)

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{ledgers: make(map[string]*domain.Ledger)}
}

func (r *memLedgerRepo) FindLedgerByUserID(_ context.Context, userID string) (*domain.Ledger, error) {
	ledger, ok := r.ledgers[userID]
	if !ok {
		return nil, fmt.Errorf("ledger for user %s: %w", userID, apperrors.ErrNotFound)
	}
	return ledger, nil
}

func (r *memLedgerRepo) FindLedgersByUserIDs(_ context.Context, userIDs []string) (map[string]*domain.Ledger, error) {
	found := make(map[string]*domain.Ledger)
	for _, userID := range userIDs {
		if ledger, ok := r.ledgers[userID]; ok {
			found[userID] = ledger
		}
	}
	return found, nil
}

func (r *memLedgerRepo) SaveLedgers(_ context.Context, ledgers []*domain.Ledger) error {
	for _, ledger := range ledgers {
		r.ledgers[ledger.UserID] = ledger
	}
	r.saves++
	return nil
}

func TestLedgerService_ProportionalDistribution(t *testing.T) {
	// A pays 60, B pays 40, C owes the full 100.
	repo := newMemLedgerRepo()
	svc := services.NewLedgerService(repo)

	payments := []domain.Payment{
		{UserID: "A", AmountPaid: dec("60")},
		{UserID: "B", AmountPaid: dec("40")},
	}
	splits := []domain.SplitLine{
		{UserID: "C", AmountOwed: dec("100")},
	}

	updated, err := svc.ApplyExpense(context.Background(), payments, splits, dec("100"))
	require.NoError(t, err)
	require.Len(t, updated, 3)

	a := repo.ledgers["A"]
	b := repo.ledgers["B"]
	c := repo.ledgers["C"]

	assert.True(t, a.TotalPayment.Equal(dec("60")))
	assert.True(t, a.TotalYouGetBack.Equal(dec("60")))
	assert.True(t, a.TotalYouOwe.IsZero())

	assert.True(t, b.TotalPayment.Equal(dec("40")))
	assert.True(t, b.TotalYouGetBack.Equal(dec("40")))

	assert.True(t, c.TotalYouOwe.Equal(dec("100")))
	assert.True(t, c.TotalPayment.IsZero())
	assert.True(t, c.TotalYouGetBack.IsZero())

	// Pairwise: C owes A 60 and B 40, mirrored on both sides.
	assert.True(t, c.Balance("A").AmountOwedToCounterparty.Equal(dec("60")))
	assert.True(t, c.Balance("B").AmountOwedToCounterparty.Equal(dec("40")))
	assert.True(t, a.Balance("C").AmountOwedByCounterparty.Equal(dec("60")))
	assert.True(t, b.Balance("C").AmountOwedByCounterparty.Equal(dec("40")))
}

func TestLedgerService_SelfOweExclusion(t *testing.T) {
	// A and B pay 50 each and owe 50 each. Each still owes the full 50 in
	// the lifetime total, but no pairwise balance against themselves exists.
	repo := newMemLedgerRepo()
	svc := services.NewLedgerService(repo)

	payments := []domain.Payment{
		{UserID: "A", AmountPaid: dec("50")},
		{UserID: "B", AmountPaid: dec("50")},
	}
	splits := []domain.SplitLine{
		{UserID: "A", AmountOwed: dec("50")},
		{UserID: "B", AmountOwed: dec("50")},
	}

	_, err := svc.ApplyExpense(context.Background(), payments, splits, dec("100"))
	require.NoError(t, err)

	a := repo.ledgers["A"]
	b := repo.ledgers["B"]

	assert.True(t, a.TotalYouOwe.Equal(dec("50")))
	assert.True(t, b.TotalYouOwe.Equal(dec("50")))

	_, aSelf := a.Balances["A"]
	_, bSelf := b.Balances["B"]
	assert.False(t, aSelf, "ledger must not hold a balance against its owner")
	assert.False(t, bSelf, "ledger must not hold a balance against its owner")

	// Each owes the other half of their share: 50 * 50/100 = 25.
	assert.True(t, a.Balance("B").AmountOwedToCounterparty.Equal(dec("25")))
	assert.True(t, a.Balance("B").AmountOwedByCounterparty.Equal(dec("25")))
	assert.True(t, a.TotalYouGetBack.Equal(dec("25")))
	assert.True(t, b.TotalYouGetBack.Equal(dec("25")))
}

func TestLedgerService_DuplicatePayerEntriesAggregated(t *testing.T) {
	repo := newMemLedgerRepo()
	svc := services.NewLedgerService(repo)

	payments := []domain.Payment{
		{UserID: "A", AmountPaid: dec("30")},
		{UserID: "A", AmountPaid: dec("70")},
	}
	splits := []domain.SplitLine{
		{UserID: "B", AmountOwed: dec("100")},
	}

	_, err := svc.ApplyExpense(context.Background(), payments, splits, dec("100"))
	require.NoError(t, err)

	a := repo.ledgers["A"]
	assert.True(t, a.TotalPayment.Equal(dec("100")))
	assert.True(t, a.Balance("B").AmountOwedByCounterparty.Equal(dec("100")))
}

func TestLedgerService_NoPaymentsGuard(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	svc := services.NewLedgerService(mockRepo)

	splits := []domain.SplitLine{{UserID: "B", AmountOwed: dec("100")}}

	_, err := svc.ApplyExpense(context.Background(), nil, splits, dec("100"))
	assert.ErrorIs(t, err, services.ErrNoPayments)

	zeroPayments := []domain.Payment{{UserID: "A", AmountPaid: decimal.Zero}}
	_, err = svc.ApplyExpense(context.Background(), zeroPayments, splits, dec("100"))
	assert.ErrorIs(t, err, services.ErrNoPayments)

	// Nothing may touch the repository when the guard fires.
	mockRepo.AssertNotCalled(t, "FindLedgersByUserIDs", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "SaveLedgers", mock.Anything, mock.Anything)
}

func TestLedgerService_SaveFailurePropagates(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	svc := services.NewLedgerService(mockRepo)

	mockRepo.On("FindLedgersByUserIDs", mock.Anything, mock.Anything).
		Return(map[string]*domain.Ledger{}, nil)
	mockRepo.On("SaveLedgers", mock.Anything, mock.Anything).
		Return(fmt.Errorf("connection reset"))

	payments := []domain.Payment{{UserID: "A", AmountPaid: dec("100")}}
	splits := []domain.SplitLine{{UserID: "B", AmountOwed: dec("100")}}

	_, err := svc.ApplyExpense(context.Background(), payments, splits, dec("100"))
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

// reconcile asserts the pairwise reconciliation law across every user pair:
// what A's ledger says A owes B equals what B's ledger says B is owed by A.
func reconcile(t *testing.T, ledgers map[string]*domain.Ledger) {
	t.Helper()
	for _, ledger := range ledgers {
		for counterpartyID, balance := range ledger.Balances {
			other, ok := ledgers[counterpartyID]
			require.True(t, ok, "counterparty %s has no ledger", counterpartyID)
			mirror := other.Balance(ledger.UserID)
			assert.True(t, balance.AmountOwedToCounterparty.Equal(mirror.AmountOwedByCounterparty),
				"%s->%s owed-to %s vs mirrored owed-by %s",
				ledger.UserID, counterpartyID, balance.AmountOwedToCounterparty, mirror.AmountOwedByCounterparty)
			assert.True(t, balance.AmountOwedByCounterparty.Equal(mirror.AmountOwedToCounterparty),
				"%s->%s owed-by %s vs mirrored owed-to %s",
				ledger.UserID, counterpartyID, balance.AmountOwedByCounterparty, mirror.AmountOwedToCounterparty)
		}
	}
}

func TestLedgerService_ReconciliationOverSequence(t *testing.T) {
	repo := newMemLedgerRepo()
	svc := services.NewLedgerService(repo)
	ctx := context.Background()

	type expense struct {
		payments []domain.Payment
		splits   []domain.SplitLine
		total    decimal.Decimal
	}
	sequence := []expense{
		{
			payments: []domain.Payment{{UserID: "A", AmountPaid: dec("90")}},
			splits: []domain.SplitLine{
				{UserID: "A", AmountOwed: dec("30")},
				{UserID: "B", AmountOwed: dec("30")},
				{UserID: "C", AmountOwed: dec("30")},
			},
			total: dec("90"),
		},
		{
			payments: []domain.Payment{
				{UserID: "B", AmountPaid: dec("45")},
				{UserID: "C", AmountPaid: dec("15")},
			},
			splits: []domain.SplitLine{
				{UserID: "A", AmountOwed: dec("20")},
				{UserID: "D", AmountOwed: dec("40")},
			},
			total: dec("60"),
		},
		{
			payments: []domain.Payment{{UserID: "D", AmountPaid: dec("33.33")}},
			splits: []domain.SplitLine{
				{UserID: "B", AmountOwed: dec("11.11")},
				{UserID: "C", AmountOwed: dec("22.22")},
			},
			total: dec("33.33"),
		},
	}

	for i, e := range sequence {
		_, err := svc.ApplyExpense(ctx, e.payments, e.splits, e.total)
		require.NoError(t, err, "expense %d", i)
		reconcile(t, repo.ledgers)
	}
	assert.Equal(t, len(sequence), repo.saves)
}

func TestLedgerService_GetLedgerUntouchedUser(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	svc := services.NewLedgerService(mockRepo)

	mockRepo.On("FindLedgerByUserID", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("ledger for user ghost: %w", apperrors.ErrNotFound))

	ledger, err := svc.GetLedger(context.Background(), "ghost")
	require.NoError(t, err)
	require.NotNil(t, ledger)

	assert.Equal(t, "ghost", ledger.UserID)
	assert.True(t, ledger.TotalPayment.IsZero())
	assert.True(t, ledger.TotalYouOwe.IsZero())
	assert.True(t, ledger.TotalYouGetBack.IsZero())
	assert.Empty(t, ledger.Balances)

	// The read never persists the fresh ledger.
	mockRepo.AssertNotCalled(t, "SaveLedgers", mock.Anything, mock.Anything)
}

func TestLedgerService_GetLedgerExisting(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	svc := services.NewLedgerService(mockRepo)

	existing := domain.NewLedger("A")
	existing.TotalPayment = dec("60")
	mockRepo.On("FindLedgerByUserID", mock.Anything, "A").Return(existing, nil)

	ledger, err := svc.GetLedger(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, ledger.TotalPayment.Equal(dec("60")))
}
