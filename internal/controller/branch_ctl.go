package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/service"
)

// BranchController 分店管理
type BranchController struct {
	service *service.BranchService
}

// NewBranchController 创建分店控制器
func NewBranchController(svc *service.BranchService) *BranchController {
	return &BranchController{service: svc}
}

// PublicList 启用中的分店
// @Summary 分店列表（公开）
// @Tags Branch
// @Produce json
// @Success 200 {array} model.Branch
// @Router /branches [get]
func (c *BranchController) PublicList(ctx *gin.Context) {
	list, err := c.service.List(ctx.Request.Context(), true)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", list)
}

// List 全部分店
// @Summary 分店列表（后台）
// @Tags Branch
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Branch
// @Router /admin/branches [get]
func (c *BranchController) List(ctx *gin.Context) {
	list, err := c.service.List(ctx.Request.Context(), false)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", list)
}

// Create 创建分店
// @Summary 创建分店
// @Tags Branch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBranchRequest true "分店信息"
// @Success 200 {object} model.Branch
// @Failure 409 {object} map[string]interface{}
// @Router /admin/branches [post]
func (c *BranchController) Create(ctx *gin.Context) {
	var req dto.CreateBranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	branch, err := c.service.Create(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "branch created", branch)
}

// Update 更新分店
// @Summary 更新分店
// @Tags Branch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分店 ID"
// @Param request body dto.UpdateBranchRequest true "更新字段"
// @Success 200 {object} model.Branch
// @Failure 404 {object} map[string]interface{}
// @Router /admin/branches/{id} [patch]
func (c *BranchController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateBranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	branch, err := c.service.Update(ctx.Request.Context(), middleware.GetUserID(ctx), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "branch updated", branch)
}

// Delete 删除分店
// @Summary 删除分店（仅管理员）
// @Tags Branch
// @Security BearerAuth
// @Param id path int true "分店 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /admin/branches/{id} [delete]
func (c *BranchController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.service.Delete(ctx.Request.Context(), middleware.GetUserID(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "branch deleted", gin.H{"id": id})
}
