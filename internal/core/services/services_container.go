package services

import (
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// User and split services have no service dependencies, build them first
	container.User = NewUserService(repos.UserRepo)
	container.Split = NewSplitService()
	container.Ledger = NewLedgerService(repos.LedgerRepo)
	container.Group = NewGroupService(repos.GroupRepo, container.User)

	// Expense service composes the split and ledger engines
	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		container.User,
		container.Group,
		container.Split,
		container.Ledger,
	)

	return container
}
