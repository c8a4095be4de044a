package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"line_price_portal/internal/middleware"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// ==================== AuditLogger 审计日志 ====================

// AuditEntry 一条审计记录
// IP 与 UserAgent 从 context 中的 AuditInfo 获取
type AuditEntry struct {
	UserID     int64
	Action     model.LogAction
	EntityType string
	EntityID   string
	Details    map[string]interface{}
}

// AuditLogger 审计日志接口
// Log 不返回错误：写入失败不影响主流程
type AuditLogger interface {
	Log(ctx context.Context, entry AuditEntry)
}

// AuditService 审计日志服务
type AuditService struct {
	repo   repository.UserLogRepository
	now    func() time.Time
	budget time.Duration
}

// NewAuditService 创建审计服务
func NewAuditService(repo repository.UserLogRepository) *AuditService {
	return &AuditService{
		repo:   repo,
		now:    time.Now,
		budget: 5 * time.Second,
	}
}

// Log 写一条审计日志
// 与请求 context 的取消解耦，调用方返回后仍能写完
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) {
	info := middleware.GetAuditInfo(ctx)

	row := &model.UserLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		IPAddress:  info.IP,
		UserAgent:  info.UserAgent,
		CreatedAt:  s.now(),
	}
	if entry.UserID != 0 {
		uid := entry.UserID
		row.UserID = &uid
	}
	if len(entry.Details) > 0 {
		row.Details = marshalDetails(entry)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.budget)
	defer cancel()

	if err := s.repo.Create(writeCtx, row); err != nil {
		log.Error().
			Err(err).
			Str("action", string(entry.Action)).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("audit log write failed")
	}
}

// marshalDetails 详情无法序列化时仍写入记录，details 中保留错误信息
func marshalDetails(entry AuditEntry) datatypes.JSON {
	data, err := json.Marshal(entry.Details)
	if err == nil {
		return datatypes.JSON(data)
	}

	log.Warn().
		Err(err).
		Str("action", string(entry.Action)).
		Str("entity_id", entry.EntityID).
		Msg("audit details marshal failed")
	fallback, _ := json.Marshal(map[string]string{"details_error": err.Error()})
	return datatypes.JSON(fallback)
}

// List 审计日志查询
func (s *AuditService) List(ctx context.Context, filter repository.UserLogFilter) ([]model.UserLog, int64, error) {
	return s.repo.List(ctx, filter)
}

// NopAuditLogger 丢弃所有审计记录
type NopAuditLogger struct{}

func (NopAuditLogger) Log(context.Context, AuditEntry) {}
