package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	"github.com/splitclub/split_expense_app/internal/models"
)

type PgxExpenseRepository struct {
	db *pgxpool.Pool
}

func newPgxExpenseRepository(db *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{db: db}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func toModelExpense(d domain.Expense) models.Expense {
	var groupID *string
	if d.GroupID != "" {
		groupID = &d.GroupID
	}
	return models.Expense{
		ExpenseID:   d.ExpenseID,
		Description: d.Description,
		TotalAmount: d.TotalAmount,
		SplitType:   string(d.SplitPolicy),
		GroupID:     groupID,
		ExpenseDate: d.ExpenseDate,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainExpense(m models.Expense, payments []models.ExpensePayment, splits []models.ExpenseSplit) domain.Expense {
	groupID := ""
	if m.GroupID != nil {
		groupID = *m.GroupID
	}
	domainPayments := make([]domain.Payment, len(payments))
	for i, p := range payments {
		domainPayments[i] = domain.Payment{UserID: p.UserID, AmountPaid: p.AmountPaid}
	}
	domainSplits := make([]domain.SplitLine, len(splits))
	for i, s := range splits {
		domainSplits[i] = domain.SplitLine{UserID: s.UserID, AmountOwed: s.AmountOwed}
	}
	return domain.Expense{
		ExpenseID:   m.ExpenseID,
		Description: m.Description,
		TotalAmount: m.TotalAmount,
		SplitPolicy: domain.SplitPolicy(m.SplitType),
		GroupID:     groupID,
		Payments:    domainPayments,
		Splits:      domainSplits,
		ExpenseDate: m.ExpenseDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveExpense inserts the expense, its payments and its splits within a
// single DB transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	modelExpense := toModelExpense(expense)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	expenseQuery := `
        INSERT INTO expenses (expense_id, description, total_amount, split_type, group_id, expense_date, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	_, err = tx.Exec(ctx, expenseQuery,
		modelExpense.ExpenseID,
		modelExpense.Description,
		modelExpense.TotalAmount,
		modelExpense.SplitType,
		modelExpense.GroupID,
		modelExpense.ExpenseDate,
		modelExpense.CreatedAt,
		modelExpense.CreatedBy,
		modelExpense.LastUpdatedAt,
		modelExpense.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("expense %s: %w", expense.ExpenseID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert expense %s: %w", expense.ExpenseID, err)
	}

	batch := &pgx.Batch{}
	paymentQuery := `
        INSERT INTO expense_payments (expense_id, user_id, amount_paid)
        VALUES ($1, $2, $3);
    `
	for _, p := range expense.Payments {
		batch.Queue(paymentQuery, expense.ExpenseID, p.UserID, p.AmountPaid)
	}
	splitQuery := `
        INSERT INTO expense_splits (expense_id, user_id, amount_owed)
        VALUES ($1, $2, $3);
    `
	for _, s := range expense.Splits {
		batch.Queue(splitQuery, expense.ExpenseID, s.UserID, s.AmountOwed)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert payment/split rows for expense %s: %w", expense.ExpenseID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit expense %s: %w", expense.ExpenseID, err)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `
        SELECT expense_id, description, total_amount, split_type, group_id, expense_date, created_at, created_by, last_updated_at, last_updated_by
        FROM expenses
        WHERE expense_id = $1;
    `
	var m models.Expense
	err := r.db.QueryRow(ctx, query, expenseID).Scan(
		&m.ExpenseID,
		&m.Description,
		&m.TotalAmount,
		&m.SplitType,
		&m.GroupID,
		&m.ExpenseDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find expense by ID: %w", err)
	}

	payments, splits, err := r.findExpenseLines(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	expense := toDomainExpense(m, payments, splits)
	return &expense, nil
}

func (r *PgxExpenseRepository) findExpenseLines(ctx context.Context, expenseID string) ([]models.ExpensePayment, []models.ExpenseSplit, error) {
	paymentQuery := `
        SELECT expense_id, user_id, amount_paid
        FROM expense_payments
        WHERE expense_id = $1
        ORDER BY user_id;
    `
	rows, err := r.db.Query(ctx, paymentQuery, expenseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query payments for expense %s: %w", expenseID, err)
	}
	payments := []models.ExpensePayment{}
	for rows.Next() {
		var p models.ExpensePayment
		if err := rows.Scan(&p.ExpenseID, &p.UserID, &p.AmountPaid); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating payment rows: %w", rows.Err())
	}

	splitQuery := `
        SELECT expense_id, user_id, amount_owed
        FROM expense_splits
        WHERE expense_id = $1
        ORDER BY user_id;
    `
	rows, err = r.db.Query(ctx, splitQuery, expenseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query splits for expense %s: %w", expenseID, err)
	}
	defer rows.Close()
	splits := []models.ExpenseSplit{}
	for rows.Next() {
		var s models.ExpenseSplit
		if err := rows.Scan(&s.ExpenseID, &s.UserID, &s.AmountOwed); err != nil {
			return nil, nil, fmt.Errorf("failed to scan split row: %w", err)
		}
		splits = append(splits, s)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating split rows: %w", rows.Err())
	}

	return payments, splits, nil
}

// findExpensesWhere runs the given expense header query and hydrates each row
// with its payments and splits.
func (r *PgxExpenseRepository) findExpensesWhere(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	modelExpenses := []models.Expense{}
	for rows.Next() {
		var m models.Expense
		if err := rows.Scan(
			&m.ExpenseID,
			&m.Description,
			&m.TotalAmount,
			&m.SplitType,
			&m.GroupID,
			&m.ExpenseDate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		modelExpenses = append(modelExpenses, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", rows.Err())
	}

	expenses := make([]domain.Expense, 0, len(modelExpenses))
	for _, m := range modelExpenses {
		payments, splits, err := r.findExpenseLines(ctx, m.ExpenseID)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, toDomainExpense(m, payments, splits))
	}
	return expenses, nil
}

func (r *PgxExpenseRepository) FindExpenses(ctx context.Context, limit int, offset int) ([]domain.Expense, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT expense_id, description, total_amount, split_type, group_id, expense_date, created_at, created_by, last_updated_at, last_updated_by
        FROM expenses
        ORDER BY expense_date DESC, expense_id
        LIMIT $1 OFFSET $2;
    `
	return r.findExpensesWhere(ctx, query, limit, offset)
}

func (r *PgxExpenseRepository) FindExpensesByGroup(ctx context.Context, groupID string) ([]domain.Expense, error) {
	query := `
        SELECT expense_id, description, total_amount, split_type, group_id, expense_date, created_at, created_by, last_updated_at, last_updated_by
        FROM expenses
        WHERE group_id = $1
        ORDER BY expense_date DESC, expense_id;
    `
	return r.findExpensesWhere(ctx, query, groupID)
}

func (r *PgxExpenseRepository) FindExpensesByUser(ctx context.Context, userID string) ([]domain.Expense, error) {
	query := `
        SELECT e.expense_id, e.description, e.total_amount, e.split_type, e.group_id, e.expense_date, e.created_at, e.created_by, e.last_updated_at, e.last_updated_by
        FROM expenses e
        WHERE EXISTS (SELECT 1 FROM expense_payments p WHERE p.expense_id = e.expense_id AND p.user_id = $1)
           OR EXISTS (SELECT 1 FROM expense_splits s WHERE s.expense_id = e.expense_id AND s.user_id = $1)
        ORDER BY e.expense_date DESC, e.expense_id;
    `
	return r.findExpensesWhere(ctx, query, userID)
}
