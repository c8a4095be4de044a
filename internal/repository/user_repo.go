package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"line_price_portal/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*model.User, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdateLoginProfile(ctx context.Context, id int64, name, email, image string, at time.Time) error
	FillShopProfile(ctx context.Context, id int64, shopName, phone string) error
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
}

// UserFilter 用户筛选条件
type UserFilter struct {
	Keyword  string
	Role     string
	IsActive *bool
	Page     int
	PageSize int
}

// ==================== 实现 ====================

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return TranslateError(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID 根据 ID 获取用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &user, nil
}

// GetByProvider 根据登录渠道获取用户
func (r *userRepository) GetByProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &user, nil
}

// UpdateFields 更新指定字段
func (r *userRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return TranslateError(r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

// UpdateLoginProfile 登录时刷新 LINE 资料与最后登录时间
func (r *userRepository) UpdateLoginProfile(ctx context.Context, id int64, name, email, image string, at time.Time) error {
	fields := map[string]interface{}{
		"name":          name,
		"image":         image,
		"last_login_at": at,
	}
	if email != "" {
		fields["email"] = email
	}
	return r.UpdateFields(ctx, id, fields)
}

// FillShopProfile 仅在为空时写入店铺名和电话
func (r *userRepository) FillShopProfile(ctx context.Context, id int64, shopName, phone string) error {
	db := r.db.WithContext(ctx).Model(&model.User{})
	if err := db.Where("id = ? AND (shop_name IS NULL OR shop_name = '')", id).
		Update("shop_name", shopName).Error; err != nil {
		return TranslateError(err)
	}
	return TranslateError(r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND (phone IS NULL OR phone = '')", id).
		Update("phone", phone).Error)
}

// SetActive 启用/停用用户（软删除）
func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return TranslateError(r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_active", active).Error)
}

// List 用户列表
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.User{})

	// 关键词搜索
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR shop_name LIKE ? OR phone LIKE ?", keyword, keyword, keyword)
	}

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, TranslateError(err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var users []model.User
	err := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error

	return users, total, TranslateError(err)
}

// normalizePage 分页参数兜底
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}
