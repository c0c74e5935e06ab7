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

type PgxGroupRepository struct {
	db *pgxpool.Pool
}

func newPgxGroupRepository(db *pgxpool.Pool) portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{db: db}
}

var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

func toDomainGroup(m models.Group, memberIDs []string) domain.Group {
	return domain.Group{
		GroupID:   m.GroupID,
		GroupName: m.GroupName,
		MemberIDs: memberIDs,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveGroup inserts the group and its initial members in one DB transaction.
func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	groupQuery := `
        INSERT INTO groups (group_id, group_name, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6);
    `
	_, err = tx.Exec(ctx, groupQuery,
		group.GroupID,
		group.GroupName,
		group.CreatedAt,
		group.CreatedBy,
		group.LastUpdatedAt,
		group.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("group %s: %w", group.GroupID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert group %s: %w", group.GroupID, err)
	}

	batch := &pgx.Batch{}
	memberQuery := `
        INSERT INTO group_members (group_id, user_id, joined_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (group_id, user_id) DO NOTHING;
    `
	for _, userID := range group.MemberIDs {
		batch.Queue(memberQuery, group.GroupID, userID, group.CreatedAt)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert members for group %s: %w", group.GroupID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit group %s: %w", group.GroupID, err)
	}
	return nil
}

func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	query := `
        SELECT group_id, group_name, created_at, created_by, last_updated_at, last_updated_by
        FROM groups
        WHERE group_id = $1;
    `
	var m models.Group
	err := r.db.QueryRow(ctx, query, groupID).Scan(
		&m.GroupID,
		&m.GroupName,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", groupID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find group by ID: %w", err)
	}

	memberIDs, err := r.findMemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group := toDomainGroup(m, memberIDs)
	return &group, nil
}

func (r *PgxGroupRepository) findMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	query := `
        SELECT user_id
        FROM group_members
        WHERE group_id = $1
        ORDER BY joined_at, user_id;
    `
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of group %s: %w", groupID, err)
	}
	defer rows.Close()

	memberIDs := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		memberIDs = append(memberIDs, userID)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", rows.Err())
	}
	return memberIDs, nil
}

func (r *PgxGroupRepository) FindGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT group_id, group_name, created_at, created_by, last_updated_at, last_updated_by
        FROM groups
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2;
    `
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	modelGroups := []models.Group{}
	for rows.Next() {
		var m models.Group
		if err := rows.Scan(
			&m.GroupID,
			&m.GroupName,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		modelGroups = append(modelGroups, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", rows.Err())
	}

	groups := make([]domain.Group, 0, len(modelGroups))
	for _, m := range modelGroups {
		memberIDs, err := r.findMemberIDs(ctx, m.GroupID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, toDomainGroup(m, memberIDs))
	}
	return groups, nil
}

func (r *PgxGroupRepository) AddGroupMember(ctx context.Context, groupID string, userID string) error {
	query := `
        INSERT INTO group_members (group_id, user_id, joined_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (group_id, user_id) DO NOTHING;
    `
	if _, err := r.db.Exec(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("failed to add member %s to group %s: %w", userID, groupID, err)
	}
	return nil
}

func (r *PgxGroupRepository) RemoveGroupMember(ctx context.Context, groupID string, userID string) error {
	query := `
        DELETE FROM group_members
        WHERE group_id = $1 AND user_id = $2;
    `
	if _, err := r.db.Exec(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("failed to remove member %s from group %s: %w", userID, groupID, err)
	}
	return nil
}
