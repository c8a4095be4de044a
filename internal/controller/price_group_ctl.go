package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/service"
)

// ==================== PriceGroupController 价格组 ====================

// PriceGroupController 价格组与价格图
type PriceGroupController struct {
	service *service.PriceGroupService
}

// NewPriceGroupController 创建价格组控制器
func NewPriceGroupController(svc *service.PriceGroupService) *PriceGroupController {
	return &PriceGroupController{service: svc}
}

// List 价格组列表
// @Summary 价格组列表
// @Tags PriceGroup
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "分店 ID"
// @Param active_only query bool false "仅启用"
// @Success 200 {array} model.PriceGroup
// @Router /admin/price-groups [get]
func (c *PriceGroupController) List(ctx *gin.Context) {
	var req dto.PriceGroupListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	list, err := c.service.List(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", list)
}

// Get 价格组详情
// @Summary 价格组详情
// @Tags PriceGroup
// @Produce json
// @Security BearerAuth
// @Param id path int true "价格组 ID"
// @Success 200 {object} model.PriceGroup
// @Failure 404 {object} map[string]interface{}
// @Router /admin/price-groups/{id} [get]
func (c *PriceGroupController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	group, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", group)
}

// Create 创建价格组
// @Summary 创建价格组
// @Tags PriceGroup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePriceGroupRequest true "价格组信息"
// @Success 200 {object} model.PriceGroup
// @Router /admin/price-groups [post]
func (c *PriceGroupController) Create(ctx *gin.Context) {
	var req dto.CreatePriceGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	group, err := c.service.Create(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "price group created", group)
}

// Update 更新价格组
// @Summary 更新价格组
// @Tags PriceGroup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "价格组 ID"
// @Param request body dto.UpdatePriceGroupRequest true "更新字段"
// @Success 200 {object} model.PriceGroup
// @Router /admin/price-groups/{id} [patch]
func (c *PriceGroupController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdatePriceGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	group, err := c.service.Update(ctx.Request.Context(), middleware.GetUserID(ctx), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "price group updated", group)
}

// Delete 删除价格组，连同授权与图片
// @Summary 删除价格组
// @Tags PriceGroup
// @Security BearerAuth
// @Param id path int true "价格组 ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/price-groups/{id} [delete]
func (c *PriceGroupController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.service.Delete(ctx.Request.Context(), middleware.GetUserID(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "price group deleted", gin.H{"id": id})
}

// ==================== 价格图 ====================

// ListImages 价格组图片
// @Summary 价格组图片列表
// @Tags PriceGroup
// @Produce json
// @Security BearerAuth
// @Param id path int true "价格组 ID"
// @Success 200 {array} dto.PriceGroupImageInfo
// @Router /admin/price-groups/{id}/images [get]
func (c *PriceGroupController) ListImages(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	images, err := c.service.ListImages(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", images)
}

// UploadImages 上传价格图，支持单个 file 或多个 files
// @Summary 上传价格图
// @Tags PriceGroup
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "价格组 ID"
// @Param file formData file false "图片"
// @Param files formData file false "多张图片"
// @Param send_to_line formData bool false "推送 LINE"
// @Param send_to_telegram formData bool false "推送 Telegram"
// @Param is_first_image formData bool false "是否为本批首张"
// @Success 200 {array} dto.PriceGroupImageInfo
// @Failure 400 {object} map[string]interface{}
// @Router /admin/price-groups/{id}/images [post]
func (c *PriceGroupController) UploadImages(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var opts dto.UploadImageOptions
	if err := ctx.ShouldBind(&opts); err != nil {
		respondBindError(ctx, err)
		return
	}

	files, err := readUploads(ctx, "files")
	if err != nil {
		respondError(ctx, err)
		return
	}
	single, err := readUploads(ctx, "file")
	if err != nil {
		respondError(ctx, err)
		return
	}
	files = append(single, files...)
	if len(files) == 0 {
		respondError(ctx, errNoFile)
		return
	}

	uploaded := make([]*dto.PriceGroupImageInfo, 0, len(files))
	for i, f := range files {
		o := opts
		o.IsFirstImage = opts.IsFirstImage && i == 0
		img, err := c.service.UploadImage(ctx.Request.Context(), middleware.GetUserID(ctx), id, f, o)
		if err != nil {
			respondError(ctx, err)
			return
		}
		uploaded = append(uploaded, img)
	}
	respondOK(ctx, "images uploaded", uploaded)
}

// DeleteImage 删除价格图
// @Summary 删除价格图
// @Tags PriceGroup
// @Security BearerAuth
// @Param id path int true "图片 ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/images/{id} [delete]
func (c *PriceGroupController) DeleteImage(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.service.DeleteImage(ctx.Request.Context(), middleware.GetUserID(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "image deleted", gin.H{"id": id})
}

// ==================== 会员视图 ====================

// MemberList 当前用户可查看的价格组
// @Summary 我的价格组
// @Tags Member
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.PriceGroup
// @Router /price-groups [get]
func (c *PriceGroupController) MemberList(ctx *gin.Context) {
	list, err := c.service.ListForMember(ctx.Request.Context(), middleware.GetUserID(ctx), middleware.GetUserRole(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", list)
}

// MemberImages 当前用户查看价格图
// @Summary 价格组图片（会员）
// @Tags Member
// @Produce json
// @Security BearerAuth
// @Param id path int true "价格组 ID"
// @Success 200 {array} dto.PriceGroupImageInfo
// @Failure 404 {object} map[string]interface{}
// @Router /price-groups/{id}/images [get]
func (c *PriceGroupController) MemberImages(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	images, err := c.service.MemberImages(ctx.Request.Context(), middleware.GetUserID(ctx), middleware.GetUserRole(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", images)
}
