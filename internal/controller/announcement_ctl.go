package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/service"
)

// AnnouncementController 公告
type AnnouncementController struct {
	service *service.AnnouncementService
}

// NewAnnouncementController 创建公告控制器
func NewAnnouncementController(svc *service.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{service: svc}
}

// List 后台公告列表（含未发布）
// @Summary 公告列表（后台）
// @Tags Announcement
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AnnouncementInfo
// @Router /admin/announcements [get]
func (c *AnnouncementController) List(ctx *gin.Context) {
	c.list(ctx, false)
}

// PublishedList 已发布公告
// @Summary 公告列表
// @Tags Announcement
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AnnouncementInfo
// @Router /announcements [get]
func (c *AnnouncementController) PublishedList(ctx *gin.Context) {
	c.list(ctx, true)
}

func (c *AnnouncementController) list(ctx *gin.Context, publishedOnly bool) {
	list, err := c.service.List(ctx.Request.Context(), publishedOnly)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", list)
}

// Get 后台公告详情
// @Summary 公告详情（后台）
// @Tags Announcement
// @Produce json
// @Security BearerAuth
// @Param id path int true "公告 ID"
// @Success 200 {object} dto.AnnouncementInfo
// @Router /admin/announcements/{id} [get]
func (c *AnnouncementController) Get(ctx *gin.Context) {
	c.get(ctx, false)
}

// PublishedGet 已发布公告详情
// @Summary 公告详情
// @Tags Announcement
// @Produce json
// @Security BearerAuth
// @Param id path int true "公告 ID"
// @Success 200 {object} dto.AnnouncementInfo
// @Failure 404 {object} map[string]interface{}
// @Router /announcements/{id} [get]
func (c *AnnouncementController) PublishedGet(ctx *gin.Context) {
	c.get(ctx, true)
}

func (c *AnnouncementController) get(ctx *gin.Context, publishedOnly bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	info, err := c.service.Get(ctx.Request.Context(), id, publishedOnly)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", info)
}

// Create 发布公告
// @Summary 创建公告
// @Tags Announcement
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "标题"
// @Param body formData string false "正文"
// @Param is_published formData bool false "是否发布"
// @Param images formData file false "图片"
// @Success 200 {object} dto.AnnouncementInfo
// @Router /admin/announcements [post]
func (c *AnnouncementController) Create(ctx *gin.Context) {
	var form dto.AnnouncementForm
	if err := ctx.ShouldBind(&form); err != nil {
		respondBindError(ctx, err)
		return
	}
	files, err := readUploads(ctx, "images")
	if err != nil {
		respondError(ctx, err)
		return
	}
	info, err := c.service.Create(ctx.Request.Context(), middleware.GetUserID(ctx), &form, files)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "announcement created", info)
}

// Update 更新公告，existing_images 之外的旧图片会被删除
// @Summary 更新公告
// @Tags Announcement
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "公告 ID"
// @Param title formData string true "标题"
// @Param body formData string false "正文"
// @Param is_published formData bool false "是否发布"
// @Param existing_images formData []string false "保留的图片路径"
// @Param images formData file false "新图片"
// @Success 200 {object} dto.AnnouncementInfo
// @Router /admin/announcements/{id} [patch]
func (c *AnnouncementController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var form dto.AnnouncementForm
	if err := ctx.ShouldBind(&form); err != nil {
		respondBindError(ctx, err)
		return
	}
	files, err := readUploads(ctx, "images")
	if err != nil {
		respondError(ctx, err)
		return
	}
	info, err := c.service.Update(ctx.Request.Context(), middleware.GetUserID(ctx), id, &form, files)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "announcement updated", info)
}

// Delete 删除公告
// @Summary 删除公告
// @Tags Announcement
// @Security BearerAuth
// @Param id path int true "公告 ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/announcements/{id} [delete]
func (c *AnnouncementController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.service.Delete(ctx.Request.Context(), middleware.GetUserID(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "announcement deleted", gin.H{"id": id})
}
