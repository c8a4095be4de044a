package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"line_price_portal/internal/model"
)

// ==================== PushSubscriptionRepository 推送订阅仓库 ====================

// PushSubscriptionRepository Web Push 订阅仓库接口
type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	Deactivate(ctx context.Context, userID int64, endpoint string) (bool, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
}

type pushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPushSubscriptionRepository 创建推送订阅仓库
func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

// Upsert 按 endpoint 覆盖并重新启用
func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	sub.IsActive = true
	return TranslateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "user_agent", "is_active", "updated_at"}),
		}).
		Create(sub).Error)
}

// Deactivate 取消订阅
func (r *pushSubscriptionRepository) Deactivate(ctx context.Context, userID int64, endpoint string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Update("is_active", false)
	return result.RowsAffected > 0, TranslateError(result.Error)
}

func (r *pushSubscriptionRepository) ListActiveByUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&subs).Error
	return subs, TranslateError(err)
}
