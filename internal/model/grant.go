package model

import "time"

// UserGroupAccess 用户可查看的价格组
type UserGroupAccess struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64      `gorm:"not null;uniqueIndex:idx_user_group_access_pair" json:"user_id"`
	PriceGroupID int64      `gorm:"not null;uniqueIndex:idx_user_group_access_pair;index" json:"price_group_id"`
	ExpiresAt    *time.Time `gorm:"index" json:"expires_at,omitempty"`
	GrantedBy    *int64     `json:"granted_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (UserGroupAccess) TableName() string {
	return "user_group_access"
}

// IsExpired 是否已过期
func (g *UserGroupAccess) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(now)
}

// UserBranch 用户所属分店
type UserBranch struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_user_branches_pair" json:"user_id"`
	BranchID   int64     `gorm:"not null;uniqueIndex:idx_user_branches_pair;index" json:"branch_id"`
	AssignedBy *int64    `json:"assigned_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (UserBranch) TableName() string {
	return "user_branches"
}
