package model

import (
	"time"

	"gorm.io/datatypes"
)

// LogAction 审计动作
type LogAction string

const (
	ActionLogin                 LogAction = "login"
	ActionLogout                LogAction = "logout"
	ActionRegister              LogAction = "register"
	ActionUploadImage           LogAction = "upload_image"
	ActionDeleteImage           LogAction = "delete_image"
	ActionCreateGroup           LogAction = "create_group"
	ActionUpdateGroup           LogAction = "update_group"
	ActionDeleteGroup           LogAction = "delete_group"
	ActionCreateBranch          LogAction = "create_branch"
	ActionUpdateBranch          LogAction = "update_branch"
	ActionDeleteBranch          LogAction = "delete_branch"
	ActionCreateAnnouncement    LogAction = "create_announcement"
	ActionUpdateAnnouncement    LogAction = "update_announcement"
	ActionDeleteAnnouncement    LogAction = "delete_announcement"
	ActionCreateAccessRequest   LogAction = "create_access_request"
	ActionApproveRequest        LogAction = "approve_request"
	ActionRejectRequest         LogAction = "reject_request"
	ActionUpdateUser            LogAction = "update_user"
	ActionDeleteUser            LogAction = "delete_user"
	ActionGrantGroup            LogAction = "grant_group"
	ActionRevokeGroup           LogAction = "revoke_group"
	ActionAssignBranch          LogAction = "assign_branch"
	ActionUnassignBranch        LogAction = "unassign_branch"
	ActionUpdateRolePermissions LogAction = "update_role_permissions"
)

// 审计实体类型
const (
	EntityUser          = "user"
	EntityAccessRequest = "access_request"
	EntityPriceGroup    = "price_group"
	EntityImage         = "price_group_image"
	EntityBranch        = "branch"
	EntityRole          = "role"
	EntityAnnouncement  = "announcement"
)

// UserLog 审计日志（只追加）
// PostgreSQL 下为按 created_at 月分区的表，由 pkg/database 建表
type UserLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *int64         `gorm:"index" json:"user_id,omitempty"`
	Action     LogAction      `gorm:"size:50;not null;index" json:"action"`
	EntityType string         `gorm:"size:50" json:"entity_type,omitempty"`
	EntityID   string         `gorm:"size:100" json:"entity_id,omitempty"`
	Details    datatypes.JSON `json:"details,omitempty"`
	IPAddress  string         `gorm:"size:100" json:"ip_address,omitempty"`
	UserAgent  string         `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

func (UserLog) TableName() string {
	return "user_logs"
}
