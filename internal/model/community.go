package model

import "time"

// Community 社区模型
type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// 成员角色
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Membership 社区成员关系，(community_id, user_id) 唯一
type Membership struct {
	ID          string    `json:"id"`
	CommunityID string    `json:"community_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	Profile     *Profile  `json:"profiles,omitempty"`
}
