package dto

// UpdateRolePermissionsRequest 更新角色权限
type UpdateRolePermissionsRequest struct {
	Role        string   `json:"role" binding:"required,role"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission"`
}

// RolePermissionsResponse 更新结果
type RolePermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// MyPermissionsResponse 当前用户权限
type MyPermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}
