package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/service"
)

// PushController Web Push 订阅
type PushController struct {
	service *service.PushService
}

// NewPushController 创建推送控制器
func NewPushController(svc *service.PushService) *PushController {
	return &PushController{service: svc}
}

// Subscribe 订阅
// @Summary 订阅推送
// @Tags Push
// @Accept json
// @Security BearerAuth
// @Param request body dto.PushSubscribeRequest true "订阅信息"
// @Success 200 {object} map[string]interface{}
// @Router /push/subscribe [post]
func (c *PushController) Subscribe(ctx *gin.Context) {
	var req dto.PushSubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := c.service.Subscribe(ctx.Request.Context(), middleware.GetUserID(ctx), &req, ctx.Request.UserAgent()); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "subscribed", nil)
}

// Unsubscribe 取消订阅
// @Summary 取消推送订阅
// @Tags Push
// @Accept json
// @Security BearerAuth
// @Param request body dto.PushUnsubscribeRequest true "订阅 endpoint"
// @Success 200 {object} map[string]interface{}
// @Router /push/unsubscribe [post]
func (c *PushController) Unsubscribe(ctx *gin.Context) {
	var req dto.PushUnsubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := c.service.Unsubscribe(ctx.Request.Context(), middleware.GetUserID(ctx), req.Endpoint); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "unsubscribed", nil)
}
