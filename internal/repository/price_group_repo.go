package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"line_price_portal/internal/model"
)

// ==================== PriceGroupRepository 价格组仓库 ====================

// PriceGroupRepository 价格组仓库接口
type PriceGroupRepository interface {
	Create(ctx context.Context, group *model.PriceGroup) error
	GetByID(ctx context.Context, id int64) (*model.PriceGroup, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter PriceGroupFilter) ([]model.PriceGroup, error)
	ListGrantedTo(ctx context.Context, userID int64, now time.Time) ([]model.PriceGroup, error)
	CountByIDs(ctx context.Context, ids []int64) (int64, error)
	MaxSortOrder(ctx context.Context) (int, error)

	// 图片
	CreateImage(ctx context.Context, image *model.PriceGroupImage) error
	GetImage(ctx context.Context, id int64) (*model.PriceGroupImage, error)
	DeleteImage(ctx context.Context, id int64) error
	DeleteImagesByGroup(ctx context.Context, groupID int64) error
	ListImages(ctx context.Context, groupID int64) ([]model.PriceGroupImage, error)
}

// PriceGroupFilter 价格组筛选条件
type PriceGroupFilter struct {
	BranchID   *int64
	ActiveOnly bool
}

type priceGroupRepository struct {
	db *gorm.DB
}

// NewPriceGroupRepository 创建价格组仓库
func NewPriceGroupRepository(db *gorm.DB) PriceGroupRepository {
	return &priceGroupRepository{db: db}
}

func (r *priceGroupRepository) Create(ctx context.Context, group *model.PriceGroup) error {
	return TranslateError(r.db.WithContext(ctx).Create(group).Error)
}

func (r *priceGroupRepository) GetByID(ctx context.Context, id int64) (*model.PriceGroup, error) {
	var group model.PriceGroup
	err := r.db.WithContext(ctx).First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &group, nil
}

func (r *priceGroupRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return TranslateError(r.db.WithContext(ctx).
		Model(&model.PriceGroup{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

func (r *priceGroupRepository) Delete(ctx context.Context, id int64) error {
	return TranslateError(r.db.WithContext(ctx).Delete(&model.PriceGroup{}, id).Error)
}

func (r *priceGroupRepository) List(ctx context.Context, filter PriceGroupFilter) ([]model.PriceGroup, error) {
	query := r.db.WithContext(ctx).Model(&model.PriceGroup{})
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var groups []model.PriceGroup
	err := query.Order("sort_order ASC").Order("name ASC").Find(&groups).Error
	return groups, TranslateError(err)
}

// ListGrantedTo 用户已授权且未过期的启用价格组
func (r *priceGroupRepository) ListGrantedTo(ctx context.Context, userID int64, now time.Time) ([]model.PriceGroup, error) {
	var groups []model.PriceGroup
	err := r.db.WithContext(ctx).
		Model(&model.PriceGroup{}).
		Joins("JOIN user_group_access uga ON uga.price_group_id = price_groups.id").
		Where("uga.user_id = ?", userID).
		Where("uga.expires_at IS NULL OR uga.expires_at > ?", now).
		Where("price_groups.is_active = ?", true).
		Order("price_groups.sort_order ASC").
		Order("price_groups.name ASC").
		Find(&groups).Error
	return groups, TranslateError(err)
}

func (r *priceGroupRepository) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PriceGroup{}).Where("id IN ?", ids).Count(&count).Error
	return count, TranslateError(err)
}

func (r *priceGroupRepository) MaxSortOrder(ctx context.Context) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).
		Model(&model.PriceGroup{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error
	return maxOrder, TranslateError(err)
}

// ==================== 图片 ====================

func (r *priceGroupRepository) CreateImage(ctx context.Context, image *model.PriceGroupImage) error {
	return TranslateError(r.db.WithContext(ctx).Create(image).Error)
}

func (r *priceGroupRepository) GetImage(ctx context.Context, id int64) (*model.PriceGroupImage, error) {
	var image model.PriceGroupImage
	err := r.db.WithContext(ctx).First(&image, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &image, nil
}

func (r *priceGroupRepository) DeleteImage(ctx context.Context, id int64) error {
	return TranslateError(r.db.WithContext(ctx).Delete(&model.PriceGroupImage{}, id).Error)
}

func (r *priceGroupRepository) DeleteImagesByGroup(ctx context.Context, groupID int64) error {
	return TranslateError(r.db.WithContext(ctx).
		Where("price_group_id = ?", groupID).
		Delete(&model.PriceGroupImage{}).Error)
}

// ListImages 最新的在前
func (r *priceGroupRepository) ListImages(ctx context.Context, groupID int64) ([]model.PriceGroupImage, error) {
	var images []model.PriceGroupImage
	err := r.db.WithContext(ctx).
		Where("price_group_id = ?", groupID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&images).Error
	return images, TranslateError(err)
}
