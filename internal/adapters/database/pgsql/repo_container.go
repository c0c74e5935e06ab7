package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgsql-backed repositories over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:    newPgxUserRepository(dbPool),
		GroupRepo:   newPgxGroupRepository(dbPool),
		ExpenseRepo: newPgxExpenseRepository(dbPool),
		LedgerRepo:  newPgxLedgerRepository(dbPool),
	}
}
