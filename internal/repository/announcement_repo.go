package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"line_price_portal/internal/model"
)

// ==================== AnnouncementRepository 公告仓库 ====================

// AnnouncementRepository 公告仓库接口
type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	GetByID(ctx context.Context, id int64) (*model.Announcement, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, publishedOnly bool) ([]model.Announcement, error)

	// 图片
	AddImage(ctx context.Context, img *model.AnnouncementImage) error
	DeleteImage(ctx context.Context, id int64) error
	ListImages(ctx context.Context, announcementID int64) ([]model.AnnouncementImage, error)
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository 创建公告仓库
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	return TranslateError(r.db.WithContext(ctx).Omit("Images").Create(a).Error)
}

// GetByID 获取公告（含图片，按 sort_order）
func (r *announcementRepository) GetByID(ctx context.Context, id int64) (*model.Announcement, error) {
	var a model.Announcement
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &a, nil
}

func (r *announcementRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return TranslateError(r.db.WithContext(ctx).
		Model(&model.Announcement{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

// Delete 删除公告及其图片记录
func (r *announcementRepository) Delete(ctx context.Context, id int64) error {
	return TranslateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("announcement_id = ?", id).Delete(&model.AnnouncementImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Announcement{}, id).Error
	}))
}

func (r *announcementRepository) List(ctx context.Context, publishedOnly bool) ([]model.Announcement, error) {
	query := r.db.WithContext(ctx).Model(&model.Announcement{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var list []model.Announcement
	err := query.Order("created_at DESC").Find(&list).Error
	return list, TranslateError(err)
}

func (r *announcementRepository) AddImage(ctx context.Context, img *model.AnnouncementImage) error {
	return TranslateError(r.db.WithContext(ctx).Create(img).Error)
}

func (r *announcementRepository) DeleteImage(ctx context.Context, id int64) error {
	return TranslateError(r.db.WithContext(ctx).Delete(&model.AnnouncementImage{}, id).Error)
}

func (r *announcementRepository) ListImages(ctx context.Context, announcementID int64) ([]model.AnnouncementImage, error) {
	var list []model.AnnouncementImage
	err := r.db.WithContext(ctx).
		Where("announcement_id = ?", announcementID).
		Order("sort_order ASC").
		Find(&list).Error
	return list, TranslateError(err)
}
