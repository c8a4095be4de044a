package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"line_price_portal/internal/model"
)

// ==================== BranchRepository 分店仓库 ====================

// BranchRepository 分店仓库接口
type BranchRepository interface {
	Create(ctx context.Context, branch *model.Branch) error
	GetByID(ctx context.Context, id int64) (*model.Branch, error)
	GetByCode(ctx context.Context, code string) (*model.Branch, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool) ([]model.Branch, error)
	CountByIDs(ctx context.Context, ids []int64) (int64, error)
	MaxSortOrder(ctx context.Context) (int, error)
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository 创建分店仓库
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, branch *model.Branch) error {
	return TranslateError(r.db.WithContext(ctx).Create(branch).Error)
}

func (r *branchRepository) GetByID(ctx context.Context, id int64) (*model.Branch, error) {
	var branch model.Branch
	err := r.db.WithContext(ctx).First(&branch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &branch, nil
}

func (r *branchRepository) GetByCode(ctx context.Context, code string) (*model.Branch, error) {
	var branch model.Branch
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &branch, nil
}

func (r *branchRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return TranslateError(r.db.WithContext(ctx).
		Model(&model.Branch{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

func (r *branchRepository) Delete(ctx context.Context, id int64) error {
	return TranslateError(r.db.WithContext(ctx).Delete(&model.Branch{}, id).Error)
}

// List 按 sort_order, name 排序
func (r *branchRepository) List(ctx context.Context, activeOnly bool) ([]model.Branch, error) {
	query := r.db.WithContext(ctx).Model(&model.Branch{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var branches []model.Branch
	err := query.Order("sort_order ASC").Order("name ASC").Find(&branches).Error
	return branches, TranslateError(err)
}

// CountByIDs 统计存在的分店数量
func (r *branchRepository) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Branch{}).Where("id IN ?", ids).Count(&count).Error
	return count, TranslateError(err)
}

// MaxSortOrder 当前最大排序值
func (r *branchRepository) MaxSortOrder(ctx context.Context) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).
		Model(&model.Branch{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error
	return maxOrder, TranslateError(err)
}
