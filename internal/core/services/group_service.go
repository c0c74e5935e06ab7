package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitclub/split_expense_app/internal/core/domain"
	portsrepo "github.com/splitclub/split_expense_app/internal/core/ports/repositories"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
	"github.com/splitclub/split_expense_app/internal/dto"
	"github.com/splitclub/split_expense_app/internal/middleware"
)

type groupService struct {
	groupRepo portsrepo.GroupRepositoryFacade
	userSvc   portssvc.UserSvcFacade
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupRepo portsrepo.GroupRepositoryFacade, userSvc portssvc.UserSvcFacade) portssvc.GroupSvcFacade {
	return &groupService{groupRepo: groupRepo, userSvc: userSvc}
}

var _ portssvc.GroupSvcFacade = (*groupService)(nil)

// CreateGroup implements portssvc.GroupSvcFacade.
func (s *groupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*domain.Group, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userSvc.GetUserByID(ctx, req.CreatedByUserID); err != nil {
		return nil, fmt.Errorf("creator %s: %w", req.CreatedByUserID, err)
	}

	now := time.Now().UTC()
	group := domain.Group{
		GroupID:   req.GroupID,
		GroupName: req.GroupName,
		MemberIDs: []string{req.CreatedByUserID},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     req.CreatedByUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: req.CreatedByUserID,
		},
	}

	if err := s.groupRepo.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	logger.Info("Group created", slog.String("group_id", group.GroupID))
	return &group, nil
}

// GetGroupByID implements portssvc.GroupSvcFacade.
func (s *groupService) GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	return s.groupRepo.FindGroupByID(ctx, groupID)
}

// ListGroups implements portssvc.GroupSvcFacade.
func (s *groupService) ListGroups(ctx context.Context, limit, offset int) ([]domain.Group, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.groupRepo.FindGroups(ctx, limit, offset)
}

// AddMember implements portssvc.GroupSvcFacade.
func (s *groupService) AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if _, err := s.groupRepo.FindGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	if _, err := s.userSvc.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("member %s: %w", userID, err)
	}
	if err := s.groupRepo.AddGroupMember(ctx, groupID, userID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return s.groupRepo.FindGroupByID(ctx, groupID)
}

// RemoveMember implements portssvc.GroupSvcFacade.
func (s *groupService) RemoveMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return group, nil
	}
	if err := s.groupRepo.RemoveGroupMember(ctx, groupID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}
	return s.groupRepo.FindGroupByID(ctx, groupID)
}
