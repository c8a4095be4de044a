package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"line_price_portal/internal/model"
)

// ==================== StatsRepository 统计仓库 ====================

// UserStats 用户统计
type UserStats struct {
	Total      int64                `json:"total"`
	Active     int64                `json:"active"`
	Inactive   int64                `json:"inactive"`
	WithAccess int64                `json:"with_access"`
	ByRole     map[model.Role]int64 `json:"by_role"`
	NewLast7d  int64                `json:"new_last_7d"`
}

// RequestStats 申请统计
type RequestStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	NewLast7d int64 `json:"new_last_7d"`
}

// ContentStats 内容统计
type ContentStats struct {
	PriceGroups       int64 `json:"price_groups"`
	ActivePriceGroups int64 `json:"active_price_groups"`
	Images            int64 `json:"images"`
	ImagesLast7d      int64 `json:"images_last_7d"`
	Announcements     int64 `json:"announcements"`
	Branches          int64 `json:"branches"`
	ActivityLast7d    int64 `json:"activity_last_7d"`
}

// StatsRepository 统计仓库接口
type StatsRepository interface {
	Users(ctx context.Context, since time.Time) (*UserStats, error)
	Requests(ctx context.Context, since time.Time) (*RequestStats, error)
	Content(ctx context.Context, since time.Time) (*ContentStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) count(ctx context.Context, m interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *statsRepository) Users(ctx context.Context, since time.Time) (*UserStats, error) {
	stats := &UserStats{ByRole: make(map[model.Role]int64)}
	var err error

	if stats.Total, err = r.count(ctx, &model.User{}, ""); err != nil {
		return nil, TranslateError(err)
	}
	if stats.Active, err = r.count(ctx, &model.User{}, "is_active = ?", true); err != nil {
		return nil, TranslateError(err)
	}
	stats.Inactive = stats.Total - stats.Active
	if stats.NewLast7d, err = r.count(ctx, &model.User{}, "created_at >= ?", since); err != nil {
		return nil, TranslateError(err)
	}

	err = r.db.WithContext(ctx).
		Model(&model.UserGroupAccess{}).
		Distinct("user_id").
		Count(&stats.WithAccess).Error
	if err != nil {
		return nil, TranslateError(err)
	}

	var rows []struct {
		Role  model.Role
		Count int64
	}
	err = r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	for _, row := range rows {
		stats.ByRole[row.Role] = row.Count
	}

	return stats, nil
}

func (r *statsRepository) Requests(ctx context.Context, since time.Time) (*RequestStats, error) {
	var rows []struct {
		Status model.AccessRequestStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.AccessRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, TranslateError(err)
	}

	stats := &RequestStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case model.AccessRequestPending:
			stats.Pending = row.Count
		case model.AccessRequestApproved:
			stats.Approved = row.Count
		case model.AccessRequestRejected:
			stats.Rejected = row.Count
		}
	}

	if stats.NewLast7d, err = r.count(ctx, &model.AccessRequest{}, "created_at >= ?", since); err != nil {
		return nil, TranslateError(err)
	}
	return stats, nil
}

func (r *statsRepository) Content(ctx context.Context, since time.Time) (*ContentStats, error) {
	stats := &ContentStats{}
	counters := []struct {
		dst   *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&stats.PriceGroups, &model.PriceGroup{}, "", nil},
		{&stats.ActivePriceGroups, &model.PriceGroup{}, "is_active = ?", []interface{}{true}},
		{&stats.Images, &model.PriceGroupImage{}, "", nil},
		{&stats.ImagesLast7d, &model.PriceGroupImage{}, "created_at >= ?", []interface{}{since}},
		{&stats.Announcements, &model.Announcement{}, "", nil},
		{&stats.Branches, &model.Branch{}, "", nil},
		{&stats.ActivityLast7d, &model.UserLog{}, "created_at >= ?", []interface{}{since}},
	}

	for _, c := range counters {
		n, err := r.count(ctx, c.model, c.query, c.args...)
		if err != nil {
			return nil, TranslateError(err)
		}
		*c.dst = n
	}
	return stats, nil
}
