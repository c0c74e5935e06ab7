package models

import "time"

// Group mirrors a row of the groups table. Membership lives in group_members.
type Group struct {
	GroupID   string `json:"groupID" db:"group_id"`
	GroupName string `json:"groupName" db:"group_name"`
	AuditFields
}

// GroupMember mirrors a row of the group_members join table.
type GroupMember struct {
	GroupID  string    `json:"groupID" db:"group_id"`
	UserID   string    `json:"userID" db:"user_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}
