package repositories

import (
	"context"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// LedgerReader defines read operations for ledger data
type LedgerReader interface {
	// FindLedgerByUserID retrieves one user's ledger with its pairwise
	// balances. A user with no persisted ledger surfaces as apperrors.ErrNotFound;
	// lazy creation is the service's concern, not the repository's.
	FindLedgerByUserID(ctx context.Context, userID string) (*domain.Ledger, error)

	// FindLedgersByUserIDs retrieves the ledgers of the given users, keyed by
	// user ID. Users without a persisted ledger are simply absent from the map.
	FindLedgersByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Ledger, error)
}

// LedgerWriter defines write operations for ledger data
type LedgerWriter interface {
	// SaveLedgers upserts the given ledgers and all their pairwise balances in
	// a single database transaction, so one expense's effect is visible
	// entirely or not at all.
	SaveLedgers(ctx context.Context, ledgers []*domain.Ledger) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
