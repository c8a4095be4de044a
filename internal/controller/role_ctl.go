package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/model"
	"line_price_portal/internal/service"
)

// RoleController 角色权限管理
type RoleController struct {
	registry *service.PermissionRegistry
}

// NewRoleController 创建角色控制器
func NewRoleController(registry *service.PermissionRegistry) *RoleController {
	return &RoleController{registry: registry}
}

// List 全部角色的生效权限
// @Summary 角色权限表
// @Tags Role
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/roles [get]
func (c *RoleController) List(ctx *gin.Context) {
	table := c.registry.GetRolePermissions(ctx.Request.Context())
	roles := make(map[string][]string, len(table))
	for role, perms := range table {
		roles[string(role)] = permissionStrings(perms)
	}
	respondOK(ctx, "ok", gin.H{
		"roles":       roles,
		"permissions": permissionStrings(model.AllPermissions()),
	})
}

// Update 覆盖某个角色的权限
// @Summary 更新角色权限
// @Tags Role
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateRolePermissionsRequest true "角色与权限"
// @Success 200 {object} dto.RolePermissionsResponse
// @Failure 400 {object} map[string]interface{}
// @Router /admin/roles [put]
func (c *RoleController) Update(ctx *gin.Context) {
	var req dto.UpdateRolePermissionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	perms := make([]model.Permission, len(req.Permissions))
	for i, p := range req.Permissions {
		perms[i] = model.Permission(p)
	}

	saved, err := c.registry.SetRolePermissions(ctx.Request.Context(), middleware.GetUserID(ctx), model.Role(req.Role), perms)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "permissions updated", dto.RolePermissionsResponse{
		Role:        req.Role,
		Permissions: permissionStrings(saved),
	})
}
