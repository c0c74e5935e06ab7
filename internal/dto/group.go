package dto

import (
	"github.com/splitclub/split_expense_app/internal/core/domain"
)

// CreateGroupRequest defines the data needed to create a new group.
type CreateGroupRequest struct {
	GroupID         string `json:"groupID" binding:"required"`
	GroupName       string `json:"groupName" binding:"required"`
	CreatedByUserID string `json:"createdByUserID" binding:"required"`
}

// ListGroupsParams defines query parameters for listing groups.
type ListGroupsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// GroupResponse defines the group data returned by the API.
type GroupResponse struct {
	GroupID         string   `json:"groupID"`
	GroupName       string   `json:"groupName"`
	CreatedByUserID string   `json:"createdByUserID"`
	MemberUserIDs   []string `json:"memberUserIDs"`
}

// ListGroupsResponse wraps the list of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ToGroupResponse converts a domain.Group to GroupResponse DTO.
func ToGroupResponse(group *domain.Group) GroupResponse {
	members := group.MemberIDs
	if members == nil {
		members = []string{}
	}
	return GroupResponse{
		GroupID:         group.GroupID,
		GroupName:       group.GroupName,
		CreatedByUserID: group.CreatedBy,
		MemberUserIDs:   members,
	}
}

// ToListGroupsResponse converts a slice of domain.Group to ListGroupsResponse DTO
func ToListGroupsResponse(groups []domain.Group) ListGroupsResponse {
	groupResponses := make([]GroupResponse, len(groups))
	for i, group := range groups {
		groupResponses[i] = ToGroupResponse(&group)
	}
	return ListGroupsResponse{
		Groups: groupResponses,
	}
}
