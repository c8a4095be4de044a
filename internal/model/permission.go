package model

import "time"

// Role 系统角色
type Role string

const (
	RoleUser     Role = "user"     // 普通用户（店主）
	RoleWorker   Role = "worker"   // 员工
	RoleOperator Role = "operator" // 运营
	RoleAdmin    Role = "admin"    // 管理员，权限固定为全部
)

// AllRoles 全部角色
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleOperator, RoleWorker, RoleUser}
}

// EditableRoles 可在后台调整权限的角色
func EditableRoles() []Role {
	return []Role{RoleOperator, RoleWorker, RoleUser}
}

// IsValidRole 是否为已知角色
func IsValidRole(r string) bool {
	for _, role := range AllRoles() {
		if string(role) == r {
			return true
		}
	}
	return false
}

// Permission 权限点
type Permission string

const (
	PermViewDashboard       Permission = "view_dashboard"
	PermManageUsers         Permission = "manage_users"
	PermToggleUserStatus    Permission = "toggle_user_status"
	PermManageBranches      Permission = "manage_branches"
	PermManagePriceGroups   Permission = "manage_price_groups"
	PermUploadImages        Permission = "upload_images"
	PermManageAnnouncements Permission = "manage_announcements"
	PermApproveRequests     Permission = "approve_requests"
	PermViewAnalytics       Permission = "view_analytics"
	PermManageRoles         Permission = "manage_roles"
)

// AllPermissions 全部权限（顺序即展示顺序）
func AllPermissions() []Permission {
	return []Permission{
		PermViewDashboard,
		PermManageUsers,
		PermToggleUserStatus,
		PermManageBranches,
		PermManagePriceGroups,
		PermUploadImages,
		PermManageAnnouncements,
		PermApproveRequests,
		PermViewAnalytics,
		PermManageRoles,
	}
}

// IsValidPermission 是否为已知权限
func IsValidPermission(p string) bool {
	for _, perm := range AllPermissions() {
		if string(perm) == p {
			return true
		}
	}
	return false
}

// RolePermission 角色权限覆盖配置
// admin 永远不会写入此表
type RolePermission struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Role       Role       `gorm:"size:20;not null;uniqueIndex:idx_role_permission" json:"role"`
	Permission Permission `gorm:"size:50;not null;uniqueIndex:idx_role_permission" json:"permission"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// RolePermissionConfig 记录角色权限已被显式配置过
// 有记录的角色以 role_permissions 为准，即使该角色一行权限都没有
type RolePermissionConfig struct {
	Role      Role      `gorm:"primaryKey;size:20" json:"role"`
	UpdatedBy int64     `gorm:"not null;default:0" json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RolePermissionConfig) TableName() string {
	return "role_permission_configs"
}
