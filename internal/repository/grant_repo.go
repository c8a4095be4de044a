package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"line_price_portal/internal/model"
)

// ==================== GrantRepository 授权仓库 ====================

// GrantRepository 价格组/分店授权仓库接口
type GrantRepository interface {
	// 价格组
	InsertGroupAccess(ctx context.Context, rows []model.UserGroupAccess) error
	DeleteGroupAccess(ctx context.Context, userID, priceGroupID int64) (bool, error)
	DeleteGroupAccessByGroup(ctx context.Context, priceGroupID int64) error
	DeleteExpiredGroupAccess(ctx context.Context, now time.Time) (int64, error)
	ListGroupAccessByUser(ctx context.Context, userID int64) ([]model.UserGroupAccess, error)
	HasGroupAccess(ctx context.Context, userID, priceGroupID int64, now time.Time) (bool, error)

	// 分店
	InsertBranches(ctx context.Context, rows []model.UserBranch) error
	DeleteBranch(ctx context.Context, userID, branchID int64) (bool, error)
	ListBranchesByUser(ctx context.Context, userID int64) ([]model.UserBranch, error)
	CountUsersByBranch(ctx context.Context, branchID int64) (int64, error)
}

// ==================== 实现 ====================

type grantRepository struct {
	db *gorm.DB
}

// NewGrantRepository 创建授权仓库
func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

// InsertGroupAccess 批量授权，已存在的 (user_id, price_group_id) 忽略
func (r *grantRepository) InsertGroupAccess(ctx context.Context, rows []model.UserGroupAccess) error {
	if len(rows) == 0 {
		return nil
	}
	return TranslateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "price_group_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error)
}

// DeleteGroupAccess 撤销价格组授权
func (r *grantRepository) DeleteGroupAccess(ctx context.Context, userID, priceGroupID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND price_group_id = ?", userID, priceGroupID).
		Delete(&model.UserGroupAccess{})
	return result.RowsAffected > 0, TranslateError(result.Error)
}

// DeleteGroupAccessByGroup 删除价格组的全部授权
func (r *grantRepository) DeleteGroupAccessByGroup(ctx context.Context, priceGroupID int64) error {
	return TranslateError(r.db.WithContext(ctx).
		Where("price_group_id = ?", priceGroupID).
		Delete(&model.UserGroupAccess{}).Error)
}

// DeleteExpiredGroupAccess 清理已过期授权
func (r *grantRepository) DeleteExpiredGroupAccess(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&model.UserGroupAccess{})
	return result.RowsAffected, TranslateError(result.Error)
}

// ListGroupAccessByUser 用户的价格组授权
func (r *grantRepository) ListGroupAccessByUser(ctx context.Context, userID int64) ([]model.UserGroupAccess, error) {
	var rows []model.UserGroupAccess
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("price_group_id").
		Find(&rows).Error
	return rows, TranslateError(err)
}

// HasGroupAccess 用户是否有未过期的价格组授权
func (r *grantRepository) HasGroupAccess(ctx context.Context, userID, priceGroupID int64, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserGroupAccess{}).
		Where("user_id = ? AND price_group_id = ?", userID, priceGroupID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Count(&count).Error
	return count > 0, TranslateError(err)
}

// InsertBranches 批量分配分店，已存在的 (user_id, branch_id) 忽略
func (r *grantRepository) InsertBranches(ctx context.Context, rows []model.UserBranch) error {
	if len(rows) == 0 {
		return nil
	}
	return TranslateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "branch_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error)
}

// DeleteBranch 取消分店分配
func (r *grantRepository) DeleteBranch(ctx context.Context, userID, branchID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND branch_id = ?", userID, branchID).
		Delete(&model.UserBranch{})
	return result.RowsAffected > 0, TranslateError(result.Error)
}

// ListBranchesByUser 用户所属分店
func (r *grantRepository) ListBranchesByUser(ctx context.Context, userID int64) ([]model.UserBranch, error) {
	var rows []model.UserBranch
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("branch_id").
		Find(&rows).Error
	return rows, TranslateError(err)
}

// CountUsersByBranch 分店下的用户数
func (r *grantRepository) CountUsersByBranch(ctx context.Context, branchID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserBranch{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	return count, TranslateError(err)
}
