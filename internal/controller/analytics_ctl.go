package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/repository"
	"line_price_portal/internal/service"
)

// AnalyticsController 统计、LINE 用量、审计日志
type AnalyticsController struct {
	analytics *service.AnalyticsService
	audit     *service.AuditService
}

// NewAnalyticsController 创建统计控制器
func NewAnalyticsController(analytics *service.AnalyticsService, audit *service.AuditService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics, audit: audit}
}

// Summary 统计汇总
// @Summary 统计汇总
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AnalyticsSummary
// @Router /admin/analytics [get]
func (c *AnalyticsController) Summary(ctx *gin.Context) {
	summary, err := c.analytics.Summary(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", summary)
}

// LineUsage 本月 LINE 推送用量
// @Summary LINE 推送用量
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.LineUsage
// @Router /admin/line-usage [get]
func (c *AnalyticsController) LineUsage(ctx *gin.Context) {
	respondOK(ctx, "ok", c.analytics.LineUsage(ctx.Request.Context()))
}

// Logs 审计日志
// @Summary 审计日志
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "用户 ID"
// @Param action query string false "动作"
// @Param since query string false "起始时间 RFC3339"
// @Param until query string false "结束时间 RFC3339"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} map[string]interface{}
// @Router /admin/logs [get]
func (c *AnalyticsController) Logs(ctx *gin.Context) {
	var req dto.UserLogListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	list, total, err := c.audit.List(ctx.Request.Context(), repository.UserLogFilter{
		UserID:   req.UserID,
		Action:   req.Action,
		Since:    req.Since,
		Until:    req.Until,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", gin.H{"list": list, "total": total})
}
