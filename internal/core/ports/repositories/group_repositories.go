package repositories

import (
	"context"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// GroupReader defines read operations for group data
type GroupReader interface {
	// FindGroupByID retrieves a specific group, members included.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// FindGroups retrieves a paginated list of groups.
	FindGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error)
}

// GroupWriter defines write operations for group data
type GroupWriter interface {
	// SaveGroup persists a new group and its initial membership.
	SaveGroup(ctx context.Context, group domain.Group) error

	// AddGroupMember adds a user to a group. Adding an existing member is a no-op.
	AddGroupMember(ctx context.Context, groupID string, userID string) error

	// RemoveGroupMember removes a user from a group.
	RemoveGroupMember(ctx context.Context, groupID string, userID string) error
}

// GroupRepositoryFacade combines all group-related repository interfaces
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
}
