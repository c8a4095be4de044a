package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"line_price_portal/internal/model"
)

// ==================== AccessRequestRepository 访问申请仓库 ====================

// AccessRequestRepository 访问申请仓库接口
type AccessRequestRepository interface {
	Create(ctx context.Context, req *model.AccessRequest) error
	GetByID(ctx context.Context, id int64) (*model.AccessRequest, error)
	GetPendingByUser(ctx context.Context, userID int64) (*model.AccessRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]model.AccessRequest, error)
	List(ctx context.Context, filter AccessRequestFilter) ([]model.AccessRequest, int64, error)

	// Transition 仅当申请仍为 pending 时更新为终态，返回是否生效
	Transition(ctx context.Context, id int64, t Transition) (bool, error)
}

// Transition 状态变更参数
type Transition struct {
	To           model.AccessRequestStatus
	ReviewedBy   int64
	ReviewedAt   time.Time
	RejectReason *string
}

// AccessRequestFilter 申请筛选条件
type AccessRequestFilter struct {
	Status   string
	Page     int
	PageSize int
}

// ==================== 实现 ====================

type accessRequestRepository struct {
	db *gorm.DB
}

// NewAccessRequestRepository 创建访问申请仓库
func NewAccessRequestRepository(db *gorm.DB) AccessRequestRepository {
	return &accessRequestRepository{db: db}
}

// Create 创建申请
func (r *accessRequestRepository) Create(ctx context.Context, req *model.AccessRequest) error {
	return TranslateError(r.db.WithContext(ctx).Omit("User").Create(req).Error)
}

// GetByID 获取申请（含申请人）
func (r *accessRequestRepository) GetByID(ctx context.Context, id int64) (*model.AccessRequest, error) {
	var req model.AccessRequest
	err := r.db.WithContext(ctx).Preload("User").First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

// GetPendingByUser 获取用户待审核的申请
func (r *accessRequestRepository) GetPendingByUser(ctx context.Context, userID int64) (*model.AccessRequest, error) {
	var req model.AccessRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.AccessRequestPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

// ListByUser 用户的申请记录
func (r *accessRequestRepository) ListByUser(ctx context.Context, userID int64) ([]model.AccessRequest, error) {
	var list []model.AccessRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, TranslateError(err)
}

// List 申请列表，pending 优先
func (r *accessRequestRepository) List(ctx context.Context, filter AccessRequestFilter) ([]model.AccessRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AccessRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, TranslateError(err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var list []model.AccessRequest
	err := query.
		Preload("User").
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error

	return list, total, TranslateError(err)
}

// Transition 条件更新：WHERE status = 'pending'
// 并发审核时只有一个事务能更新成功
func (r *accessRequestRepository) Transition(ctx context.Context, id int64, t Transition) (bool, error) {
	fields := map[string]interface{}{
		"status":      t.To,
		"reviewed_by": t.ReviewedBy,
		"reviewed_at": t.ReviewedAt,
		"updated_at":  t.ReviewedAt,
	}
	if t.To == model.AccessRequestRejected {
		fields["reject_reason"] = t.RejectReason
	}

	result := r.db.WithContext(ctx).
		Model(&model.AccessRequest{}).
		Where("id = ? AND status = ?", id, model.AccessRequestPending).
		Updates(fields)
	if result.Error != nil {
		return false, TranslateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}
