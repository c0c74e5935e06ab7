package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	"github.com/splitclub/split_expense_app/internal/models"
)

type PgxLedgerRepository struct {
	db *pgxpool.Pool
}

func newPgxLedgerRepository(db *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{db: db}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func toDomainLedger(m models.Ledger, balances []models.PairwiseBalance) *domain.Ledger {
	ledger := domain.NewLedger(m.UserID)
	ledger.TotalPayment = m.TotalPayment
	ledger.TotalYouOwe = m.TotalYouOwe
	ledger.TotalYouGetBack = m.TotalYouGetBack
	for _, b := range balances {
		pb := ledger.Balance(b.CounterpartyID)
		pb.AmountOwedToCounterparty = b.AmountOwedTo
		pb.AmountOwedByCounterparty = b.AmountOwedBy
	}
	return ledger
}

func (r *PgxLedgerRepository) FindLedgerByUserID(ctx context.Context, userID string) (*domain.Ledger, error) {
	query := `
        SELECT user_id, total_payment, total_you_owe, total_you_get_back, last_updated_at
        FROM ledgers
        WHERE user_id = $1;
    `
	var m models.Ledger
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.UserID,
		&m.TotalPayment,
		&m.TotalYouOwe,
		&m.TotalYouGetBack,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ledger for user %s: %w", userID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find ledger for user %s: %w", userID, err)
	}

	balances, err := r.findBalances(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	return toDomainLedger(m, balances[userID]), nil
}

func (r *PgxLedgerRepository) FindLedgersByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Ledger, error) {
	ledgers := make(map[string]*domain.Ledger, len(userIDs))
	if len(userIDs) == 0 {
		return ledgers, nil
	}

	query := `
        SELECT user_id, total_payment, total_you_owe, total_you_get_back, last_updated_at
        FROM ledgers
        WHERE user_id = ANY($1);
    `
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}
	defer rows.Close()

	modelLedgers := []models.Ledger{}
	for rows.Next() {
		var m models.Ledger
		if err := rows.Scan(
			&m.UserID,
			&m.TotalPayment,
			&m.TotalYouOwe,
			&m.TotalYouGetBack,
			&m.LastUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		modelLedgers = append(modelLedgers, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", rows.Err())
	}

	balances, err := r.findBalances(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range modelLedgers {
		ledgers[m.UserID] = toDomainLedger(m, balances[m.UserID])
	}
	return ledgers, nil
}

// findBalances loads the pairwise balance rows of the given owners, keyed by
// owner user ID.
func (r *PgxLedgerRepository) findBalances(ctx context.Context, userIDs []string) (map[string][]models.PairwiseBalance, error) {
	query := `
        SELECT user_id, counterparty_id, amount_owed_to, amount_owed_by, last_updated_at
        FROM pairwise_balances
        WHERE user_id = ANY($1)
        ORDER BY user_id, counterparty_id;
    `
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairwise balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string][]models.PairwiseBalance, len(userIDs))
	for rows.Next() {
		var b models.PairwiseBalance
		if err := rows.Scan(
			&b.UserID,
			&b.CounterpartyID,
			&b.AmountOwedTo,
			&b.AmountOwedBy,
			&b.LastUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pairwise balance row: %w", err)
		}
		balances[b.UserID] = append(balances[b.UserID], b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating pairwise balance rows: %w", rows.Err())
	}
	return balances, nil
}

// SaveLedgers upserts the given ledgers and their pairwise balances in a
// single DB transaction. The values written are absolute, computed in memory
// by the ledger service while it holds the per-user locks.
func (r *PgxLedgerRepository) SaveLedgers(ctx context.Context, ledgers []*domain.Ledger) error {
	if len(ledgers) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	ledgerQuery := `
        INSERT INTO ledgers (user_id, total_payment, total_you_owe, total_you_get_back, last_updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            total_payment = EXCLUDED.total_payment,
            total_you_owe = EXCLUDED.total_you_owe,
            total_you_get_back = EXCLUDED.total_you_get_back,
            last_updated_at = EXCLUDED.last_updated_at;
    `
	balanceQuery := `
        INSERT INTO pairwise_balances (user_id, counterparty_id, amount_owed_to, amount_owed_by, last_updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, counterparty_id) DO UPDATE SET
            amount_owed_to = EXCLUDED.amount_owed_to,
            amount_owed_by = EXCLUDED.amount_owed_by,
            last_updated_at = EXCLUDED.last_updated_at;
    `
	for _, ledger := range ledgers {
		batch.Queue(ledgerQuery,
			ledger.UserID,
			ledger.TotalPayment,
			ledger.TotalYouOwe,
			ledger.TotalYouGetBack,
			now,
		)
		for _, b := range ledger.SortedBalances() {
			batch.Queue(balanceQuery,
				ledger.UserID,
				b.CounterpartyID,
				b.AmountOwedToCounterparty,
				b.AmountOwedByCounterparty,
				now,
			)
		}
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to upsert ledgers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ledger upserts: %w", err)
	}
	return nil
}
