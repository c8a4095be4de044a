package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"line_price_portal/internal/model"
)

// ==================== UserLogRepository 审计日志仓库 ====================

// UserLogRepository 审计日志仓库接口（只追加）
type UserLogRepository interface {
	Create(ctx context.Context, entry *model.UserLog) error
	List(ctx context.Context, filter UserLogFilter) ([]model.UserLog, int64, error)
}

// UserLogFilter 日志筛选条件
type UserLogFilter struct {
	UserID   *int64
	Action   string
	Since    *time.Time
	Until    *time.Time
	Page     int
	PageSize int
}

type userLogRepository struct {
	db *gorm.DB
}

// NewUserLogRepository 创建审计日志仓库
func NewUserLogRepository(db *gorm.DB) UserLogRepository {
	return &userLogRepository{db: db}
}

func (r *userLogRepository) Create(ctx context.Context, entry *model.UserLog) error {
	return TranslateError(r.db.WithContext(ctx).Create(entry).Error)
}

// List 按时间倒序，Since/Until 用于命中分区裁剪
func (r *userLogRepository) List(ctx context.Context, filter UserLogFilter) ([]model.UserLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.UserLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("created_at < ?", *filter.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, TranslateError(err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var logs []model.UserLog
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, TranslateError(err)
}
