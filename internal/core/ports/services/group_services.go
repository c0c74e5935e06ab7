package services

import (
	"context"

	"github.com/splitclub/split_expense_app/internal/core/domain"
	"github.com/splitclub/split_expense_app/internal/dto"
)

// GroupSvcFacade defines the operations offered by the group service.
type GroupSvcFacade interface {
	// CreateGroup creates a new group; the creator becomes its first member.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*domain.Group, error)

	// GetGroupByID retrieves a group by ID.
	GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListGroups retrieves a paginated list of groups.
	ListGroups(ctx context.Context, limit, offset int) ([]domain.Group, error)

	// AddMember adds an existing user to a group.
	AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error)

	// RemoveMember removes a user from a group.
	RemoveMember(ctx context.Context, groupID, userID string) (*domain.Group, error)
}
