package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
	"github.com/splitclub/split_expense_app/internal/core/services"
	"github.com/splitclub/split_expense_app/internal/dto"
)

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
}

var _ portsrepo.ExpenseRepositoryFacade = (*MockExpenseRepository)(nil)

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindExpenses(ctx context.Context, limit int, offset int) ([]domain.Expense, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindExpensesByGroup(ctx context.Context, groupID string) ([]domain.Expense, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindExpensesByUser(ctx context.Context, userID string) ([]domain.Expense, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock GroupService ---
type MockGroupService struct {
	mock.Mock
}

var _ portssvc.GroupSvcFacade = (*MockGroupService)(nil)

func (m *MockGroupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*domain.Group, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) ListGroups(ctx context.Context, limit, offset int) ([]domain.Group, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupService) AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) RemoveMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

type ExpenseServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	mockUserSvc     *MockUserService
	mockGroupSvc    *MockGroupService
	ledgerRepo      *memLedgerRepo
	service         portssvc.ExpenseSvcFacade
}

func (s *ExpenseServiceTestSuite) SetupTest() {
	s.mockExpenseRepo = new(MockExpenseRepository)
	s.mockUserSvc = new(MockUserService)
	s.mockGroupSvc = new(MockGroupService)
	s.ledgerRepo = newMemLedgerRepo()

	s.service = services.NewExpenseService(
		s.mockExpenseRepo,
		s.mockUserSvc,
		s.mockGroupSvc,
		services.NewSplitService(),
		services.NewLedgerService(s.ledgerRepo),
	)
}

func (s *ExpenseServiceTestSuite) knownUser(userID string) {
	s.mockUserSvc.On("GetUserByID", mock.Anything, userID).
		Return(&domain.User{UserID: userID, Name: userID}, nil)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_EqualHappyPath() {
	for _, id := range []string{"A", "B", "C"} {
		s.knownUser(id)
	}
	s.mockExpenseRepo.On("SaveExpense", mock.Anything, mock.Anything).Return(nil)

	req := dto.CreateExpenseRequest{
		Description: "dinner",
		TotalAmount: dec("90"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("90")}},
		UserIDs:     []string{"A", "B", "C"},
	}

	expense, err := s.service.CreateExpense(context.Background(), req)
	s.Require().NoError(err)

	s.True(strings.HasPrefix(expense.ExpenseID, "EXP-"))
	s.Len(expense.ExpenseID, 12)
	s.Equal("A", expense.CreatedBy)
	s.Len(expense.Splits, 3)
	s.True(expense.Splits[0].AmountOwed.Equal(dec("30")))

	// The ledger fold ran exactly once.
	s.Equal(1, s.ledgerRepo.saves)
	s.True(s.ledgerRepo.ledgers["A"].TotalPayment.Equal(dec("90")))
	s.True(s.ledgerRepo.ledgers["B"].TotalYouOwe.Equal(dec("30")))

	s.mockExpenseRepo.AssertExpectations(s.T())
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_KeepsProvidedID() {
	s.knownUser("A")
	s.knownUser("B")
	s.mockExpenseRepo.On("SaveExpense", mock.Anything, mock.Anything).Return(nil)

	req := dto.CreateExpenseRequest{
		ExpenseID:   "EXP-HOLIDAY1",
		Description: "flights",
		TotalAmount: dec("400"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("400")}},
		UserIDs:     []string{"A", "B"},
	}

	expense, err := s.service.CreateExpense(context.Background(), req)
	s.Require().NoError(err)
	s.Equal("EXP-HOLIDAY1", expense.ExpenseID)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_DuplicatePayerCollapsed() {
	s.knownUser("A")
	s.knownUser("B")
	s.mockExpenseRepo.On("SaveExpense", mock.Anything, mock.MatchedBy(func(e domain.Expense) bool {
		return len(e.Payments) == 1 && e.Payments[0].UserID == "A" && e.Payments[0].AmountPaid.Equal(dec("100"))
	})).Return(nil)

	req := dto.CreateExpenseRequest{
		Description: "card paid twice",
		TotalAmount: dec("100"),
		SplitType:   domain.SplitEqual,
		Payments: []dto.PaymentDetail{
			{UserID: "A", AmountPaid: dec("30")},
			{UserID: "A", AmountPaid: dec("70")},
		},
		UserIDs: []string{"A", "B"},
	}

	expense, err := s.service.CreateExpense(context.Background(), req)
	s.Require().NoError(err)
	s.Len(expense.Payments, 1)
	s.True(s.ledgerRepo.ledgers["A"].TotalPayment.Equal(dec("100")))
	s.mockExpenseRepo.AssertExpectations(s.T())
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_DuplicateSplitLinesCollapsed() {
	s.knownUser("A")
	s.knownUser("B")
	s.mockExpenseRepo.On("SaveExpense", mock.Anything, mock.MatchedBy(func(e domain.Expense) bool {
		return len(e.Splits) == 2
	})).Return(nil)

	req := dto.CreateExpenseRequest{
		Description: "itemised twice",
		TotalAmount: dec("100"),
		SplitType:   domain.SplitExact,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("100")}},
		Splits: []dto.SplitDetail{
			{UserID: "A", Amount: dec("30")},
			{UserID: "A", Amount: dec("20")},
			{UserID: "B", Amount: dec("50")},
		},
	}

	expense, err := s.service.CreateExpense(context.Background(), req)
	s.Require().NoError(err)
	s.Require().Len(expense.Splits, 2)
	s.Equal("A", expense.Splits[0].UserID)
	s.True(expense.Splits[0].AmountOwed.Equal(dec("50")))
	s.True(expense.Splits[1].AmountOwed.Equal(dec("50")))
	s.mockExpenseRepo.AssertExpectations(s.T())
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_DuplicateEqualParticipantCollapsed() {
	s.knownUser("A")
	s.knownUser("B")
	s.mockExpenseRepo.On("SaveExpense", mock.Anything, mock.Anything).Return(nil)

	req := dto.CreateExpenseRequest{
		Description: "same name twice",
		TotalAmount: dec("100"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("100")}},
		UserIDs:     []string{"A", "A", "B"},
	}

	expense, err := s.service.CreateExpense(context.Background(), req)
	s.Require().NoError(err)
	s.Require().Len(expense.Splits, 2)
	s.True(expense.Splits[0].AmountOwed.Equal(dec("50")))
	s.True(s.ledgerRepo.ledgers["B"].TotalYouOwe.Equal(dec("50")))
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_NonPositiveTotal() {
	req := dto.CreateExpenseRequest{
		Description: "nothing",
		TotalAmount: decimal.Zero,
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: decimal.Zero}},
		UserIDs:     []string{"A"},
	}

	_, err := s.service.CreateExpense(context.Background(), req)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockExpenseRepo.AssertNotCalled(s.T(), "SaveExpense", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_PaymentsTotalMismatch() {
	s.knownUser("A")

	req := dto.CreateExpenseRequest{
		Description: "short paid",
		TotalAmount: dec("100"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("90")}},
		UserIDs:     []string{"A"},
	}

	_, err := s.service.CreateExpense(context.Background(), req)
	s.ErrorIs(err, services.ErrPaymentsTotalMismatch)
	s.Zero(s.ledgerRepo.saves)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_NegativePayment() {
	req := dto.CreateExpenseRequest{
		Description: "bad",
		TotalAmount: dec("100"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("-1")}},
		UserIDs:     []string{"A"},
	}

	_, err := s.service.CreateExpense(context.Background(), req)
	s.ErrorIs(err, services.ErrNegativeAmount)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_MissingSplitDetails() {
	s.knownUser("A")

	req := dto.CreateExpenseRequest{
		Description: "no splits",
		TotalAmount: dec("100"),
		SplitType:   domain.SplitExact,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("100")}},
	}

	_, err := s.service.CreateExpense(context.Background(), req)
	s.ErrorIs(err, services.ErrSplitDetailsMissing)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_UnknownParticipant() {
	s.knownUser("A")
	s.mockUserSvc.On("GetUserByID", mock.Anything, "nobody").
		Return(nil, fmt.Errorf("user nobody: %w", apperrors.ErrNotFound))

	req := dto.CreateExpenseRequest{
		Description: "with a stranger",
		TotalAmount: dec("100"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("100")}},
		UserIDs:     []string{"A", "nobody"},
	}

	_, err := s.service.CreateExpense(context.Background(), req)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Zero(s.ledgerRepo.saves)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_DuplicateID() {
	s.knownUser("A")
	s.knownUser("B")
	s.mockExpenseRepo.On("SaveExpense", mock.Anything, mock.Anything).
		Return(fmt.Errorf("expense EXP-DUP00001: %w", apperrors.ErrDuplicate))

	req := dto.CreateExpenseRequest{
		ExpenseID:   "EXP-DUP00001",
		Description: "again",
		TotalAmount: dec("50"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("50")}},
		UserIDs:     []string{"A", "B"},
	}

	_, err := s.service.CreateExpense(context.Background(), req)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	// Persisting failed, so nothing reached the ledgers.
	s.Zero(s.ledgerRepo.saves)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_GroupValidated() {
	s.knownUser("A")
	s.knownUser("B")
	s.mockGroupSvc.On("GetGroupByID", mock.Anything, "trip").
		Return(nil, fmt.Errorf("group trip: %w", apperrors.ErrNotFound))

	req := dto.CreateExpenseRequest{
		Description: "grouped",
		TotalAmount: dec("50"),
		SplitType:   domain.SplitEqual,
		Payments:    []dto.PaymentDetail{{UserID: "A", AmountPaid: dec("50")}},
		UserIDs:     []string{"A", "B"},
		GroupID:     "trip",
	}

	_, err := s.service.CreateExpense(context.Background(), req)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.mockExpenseRepo.AssertNotCalled(s.T(), "SaveExpense", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestListExpensesByUser_UserShare() {
	s.knownUser("A")

	expense := domain.Expense{
		ExpenseID:   "EXP-AAAA1111",
		Description: "dinner",
		TotalAmount: dec("90"),
		SplitPolicy: domain.SplitEqual,
		Payments:    []domain.Payment{{UserID: "A", AmountPaid: dec("90")}},
		Splits: []domain.SplitLine{
			{UserID: "A", AmountOwed: dec("30")},
			{UserID: "B", AmountOwed: dec("30")},
			{UserID: "C", AmountOwed: dec("30")},
		},
		ExpenseDate: time.Now(),
	}
	s.mockExpenseRepo.On("FindExpensesByUser", mock.Anything, "A").
		Return([]domain.Expense{expense}, nil)

	responses, err := s.service.ListExpensesByUser(context.Background(), "A")
	s.Require().NoError(err)
	s.Require().Len(responses, 1)

	// A paid 90 and owes 30: net +60.
	s.True(responses[0].UserShare.Equal(dec("60")))
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
