package service

import (
	"context"
	"strings"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// PushService Web Push 订阅管理，推送投递不在这里
type PushService struct {
	repo repository.PushSubscriptionRepository
}

// NewPushService 创建订阅服务
func NewPushService(repo repository.PushSubscriptionRepository) *PushService {
	return &PushService{repo: repo}
}

// Subscribe 按 endpoint 保存订阅，已存在的重新启用
func (s *PushService) Subscribe(ctx context.Context, userID int64, req *dto.PushSubscribeRequest, userAgent string) error {
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return apperr.Validation("invalid subscription")
	}
	return s.repo.Upsert(ctx, &model.PushSubscription{
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: userAgent,
		IsActive:  true,
	})
}

// Unsubscribe 停用订阅，不存在时不报错
func (s *PushService) Unsubscribe(ctx context.Context, userID int64, endpoint string) error {
	_, err := s.repo.Deactivate(ctx, userID, strings.TrimSpace(endpoint))
	return err
}

// ActiveSubscriptions 用户的有效订阅
func (s *PushService) ActiveSubscriptions(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	return s.repo.ListActiveByUser(ctx, userID)
}
