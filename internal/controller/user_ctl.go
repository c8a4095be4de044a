package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/service"
)

// ==================== UserController 用户管理 ====================

// UserController 后台用户管理
type UserController struct {
	service *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(svc *service.UserService) *UserController {
	return &UserController{service: svc}
}

// List 用户列表
// @Summary 用户列表
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "名称/邮箱/店铺关键词"
// @Param role query string false "角色"
// @Param is_active query bool false "是否启用"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.UserListResponse
// @Router /admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	var req dto.UserListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, err := c.service.ListUsers(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", resp)
}

// Get 用户详情，含授权的价格组与分店
// @Summary 用户详情
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserDetail
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id} [get]
func (c *UserController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.service.GetUserDetail(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", detail)
}

// Update 更新用户资料、角色或启用状态
// @Summary 更新用户
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.UpdateUserRequest true "更新字段"
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} map[string]interface{}
// @Router /admin/users/{id} [patch]
func (c *UserController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	info, err := c.service.UpdateUser(ctx.Request.Context(), currentActor(ctx), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "user updated", info)
}

// Delete 删除用户（软删除）
// @Summary 删除用户
// @Tags User
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.service.DeleteUser(ctx.Request.Context(), currentActor(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "user deleted", gin.H{"id": id})
}

// ==================== 授权 ====================

// GrantGroups 授权价格组
// @Summary 授权价格组
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.GrantGroupsRequest true "价格组与到期时间"
// @Success 200 {object} map[string]interface{}
// @Router /admin/users/{id}/groups [post]
func (c *UserController) GrantGroups(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.GrantGroupsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := c.service.GrantGroups(ctx.Request.Context(), middleware.GetUserID(ctx), id, &req); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "groups granted", gin.H{"user_id": id, "price_group_ids": req.PriceGroupIDs})
}

// RevokeGroup 撤销价格组授权
// @Summary 撤销价格组授权
// @Tags User
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param groupId path int true "价格组 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id}/groups/{groupId} [delete]
func (c *UserController) RevokeGroup(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	groupID, ok := parseID(ctx, "groupId")
	if !ok {
		return
	}
	if err := c.service.RevokeGroup(ctx.Request.Context(), middleware.GetUserID(ctx), id, groupID); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "group revoked", gin.H{"user_id": id, "price_group_id": groupID})
}

// AssignBranches 分配分店
// @Summary 分配分店
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.BranchIDsRequest true "分店 ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/users/{id}/branches [post]
func (c *UserController) AssignBranches(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.BranchIDsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := c.service.AssignBranches(ctx.Request.Context(), middleware.GetUserID(ctx), id, req.BranchIDs); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "branches assigned", gin.H{"user_id": id, "branch_ids": req.BranchIDs})
}

// UnassignBranches 取消分店分配
// @Summary 取消分店分配
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.BranchIDsRequest true "分店 ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/users/{id}/branches [delete]
func (c *UserController) UnassignBranches(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.BranchIDsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	removed, err := c.service.UnassignBranches(ctx.Request.Context(), middleware.GetUserID(ctx), id, req.BranchIDs)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "branches unassigned", gin.H{"user_id": id, "removed": removed})
}
