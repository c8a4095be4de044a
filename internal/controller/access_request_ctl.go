package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/repository"
	"line_price_portal/internal/service"
)

// ==================== AccessRequestController 访问申请 ====================

// AccessRequestController 申请与审核
type AccessRequestController struct {
	service *service.AccessRequestService
}

// NewAccessRequestController 创建申请控制器
func NewAccessRequestController(svc *service.AccessRequestService) *AccessRequestController {
	return &AccessRequestController{service: svc}
}

// Submit 提交申请
// @Summary 提交访问申请
// @Tags AccessRequest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitAccessRequest true "店铺信息"
// @Success 200 {object} dto.AccessRequestInfo
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /access-requests [post]
func (c *AccessRequestController) Submit(ctx *gin.Context) {
	var req dto.SubmitAccessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	created, err := c.service.Submit(ctx.Request.Context(), middleware.GetUserID(ctx), req.ShopName, req.Phone, req.Note, req.BranchID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "access request submitted", service.ToAccessRequestInfo(created))
}

// Mine 我的申请
// @Summary 我的申请记录
// @Tags AccessRequest
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AccessRequestInfo
// @Router /access-requests/mine [get]
func (c *AccessRequestController) Mine(ctx *gin.Context) {
	list, err := c.service.MyRequests(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	out := make([]*dto.AccessRequestInfo, len(list))
	for i := range list {
		out[i] = service.ToAccessRequestInfo(&list[i])
	}
	respondOK(ctx, "ok", out)
}

// List 申请列表
// @Summary 申请列表
// @Tags AccessRequest
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending/approved/rejected"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.AccessRequestListResponse
// @Router /access-requests [get]
func (c *AccessRequestController) List(ctx *gin.Context) {
	var req dto.AccessRequestListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	list, total, err := c.service.List(ctx.Request.Context(), repository.AccessRequestFilter{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	out := make([]*dto.AccessRequestInfo, len(list))
	for i := range list {
		out[i] = service.ToAccessRequestInfo(&list[i])
	}
	respondOK(ctx, "ok", dto.AccessRequestListResponse{List: out, Total: total})
}

// Get 申请详情
// @Summary 申请详情
// @Tags AccessRequest
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请 ID"
// @Success 200 {object} dto.AccessRequestInfo
// @Failure 404 {object} map[string]interface{}
// @Router /access-requests/{id} [get]
func (c *AccessRequestController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	req, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", service.ToAccessRequestInfo(req))
}

// Approve 通过申请
// @Summary 通过申请并授权
// @Tags AccessRequest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请 ID"
// @Param request body dto.ApproveRequest true "授权的价格组与分店"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /access-requests/{id}/approve [post]
func (c *AccessRequestController) Approve(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ApproveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	if err := c.service.Approve(ctx.Request.Context(), id, middleware.GetUserID(ctx), req.PriceGroupIDs, req.BranchIDs); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "request approved", gin.H{"id": id})
}

// Reject 拒绝申请
// @Summary 拒绝申请
// @Tags AccessRequest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请 ID"
// @Param request body dto.RejectRequest false "拒绝原因"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /access-requests/{id}/reject [post]
func (c *AccessRequestController) Reject(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondBindError(ctx, err)
			return
		}
	}

	if err := c.service.Reject(ctx.Request.Context(), id, middleware.GetUserID(ctx), req.Reason); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "request rejected", gin.H{"id": id})
}
