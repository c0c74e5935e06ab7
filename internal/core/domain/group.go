package domain

// Group is a named collection of users that expenses can be tagged with.
// Membership is organizational only; it never affects balance math.
type Group struct {
	GroupID   string   `json:"groupID"` // Primary Key
	GroupName string   `json:"groupName"`
	MemberIDs []string `json:"memberIDs"` // UserID references, creator included
	AuditFields
}

// HasMember reports whether the given user belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
