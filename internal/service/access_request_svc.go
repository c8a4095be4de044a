package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// ApprovalNotifier 审核通过后的通知，失败不影响审核结果
type ApprovalNotifier interface {
	NotifyApproved(ctx context.Context, req *model.AccessRequest)
}

// AccessRequestService 访问申请状态机
// pending -> approved | rejected，终态不可再变更
type AccessRequestService struct {
	uow      *repository.AccessUnitOfWork
	grants   *GrantApplier
	audit    AuditLogger
	notifier ApprovalNotifier
	now      func() time.Time
}

// NewAccessRequestService 创建申请服务，notifier 可为 nil
func NewAccessRequestService(uow *repository.AccessUnitOfWork, grants *GrantApplier, audit AuditLogger, notifier ApprovalNotifier) *AccessRequestService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &AccessRequestService{
		uow:      uow,
		grants:   grants,
		audit:    audit,
		notifier: notifier,
		now:      time.Now,
	}
}

// ==================== 提交 ====================

// Submit 提交访问申请
func (s *AccessRequestService) Submit(ctx context.Context, userID int64, shopName, phone, note string, branchID *int64) (*model.AccessRequest, error) {
	shopName = strings.TrimSpace(shopName)
	phone = strings.TrimSpace(phone)
	if shopName == "" {
		return nil, ErrShopNameRequired
	}
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	req := &model.AccessRequest{
		UserID:   userID,
		ShopName: shopName,
		Phone:    phone,
		Note:     strings.TrimSpace(note),
		BranchID: branchID,
		Status:   model.AccessRequestPending,
	}

	err := s.uow.Transaction(ctx, func(tx *repository.AccessUnitOfWork) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		pending, err := tx.Requests.GetPendingByUser(ctx, userID)
		if err != nil {
			return err
		}
		if pending != nil {
			return ErrPendingRequestExists
		}

		if branchID != nil {
			n, err := tx.Branches.CountByIDs(ctx, []int64{*branchID})
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrBranchNotFound
			}
		}

		// 并发提交时由部分唯一索引兜底
		if err := tx.Requests.Create(ctx, req); err != nil {
			if apperr.KindOf(err) == apperr.KindConflict {
				return ErrPendingRequestExists
			}
			return err
		}

		return tx.Users.FillShopProfile(ctx, userID, shopName, phone)
	})
	if err != nil {
		return nil, repository.TranslateError(err)
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     userID,
		Action:     model.ActionCreateAccessRequest,
		EntityType: model.EntityAccessRequest,
		EntityID:   strconv.FormatInt(req.ID, 10),
		Details: map[string]interface{}{
			"shop_name": shopName,
			"branch_id": branchID,
		},
	})

	return req, nil
}

// ==================== 审核 ====================

// loadPending 事务内读取申请并确认仍为 pending
func loadPending(ctx context.Context, tx *repository.AccessUnitOfWork, requestID int64) (*model.AccessRequest, error) {
	req, err := tx.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != model.AccessRequestPending {
		return nil, ErrRequestAlreadyHandled
	}
	return req, nil
}

// Approve 通过申请并写入授权，状态变更与授权在同一事务
func (s *AccessRequestService) Approve(ctx context.Context, requestID, reviewerID int64, priceGroupIDs, branchIDs []int64) error {
	groups := uniqueIDs(priceGroupIDs)
	branches := uniqueIDs(branchIDs)
	now := s.now()

	var req *model.AccessRequest
	err := s.uow.Transaction(ctx, func(tx *repository.AccessUnitOfWork) error {
		var err error
		if req, err = loadPending(ctx, tx, requestID); err != nil {
			return err
		}
		if len(groups) == 0 {
			return ErrPriceGroupsRequired
		}
		if err := checkGrantTargets(ctx, tx, groups, branches); err != nil {
			return err
		}

		applied, err := tx.Requests.Transition(ctx, requestID, repository.Transition{
			To:         model.AccessRequestApproved,
			ReviewedBy: reviewerID,
			ReviewedAt: now,
		})
		if err != nil {
			return err
		}
		if !applied {
			// 并发审核，已被其它事务处理
			return ErrRequestAlreadyHandled
		}

		if err := s.grants.ApplyGroupGrants(ctx, tx.Grants, req.UserID, groups, reviewerID, nil); err != nil {
			return err
		}
		return s.grants.ApplyBranchGrants(ctx, tx.Grants, req.UserID, branches, reviewerID)
	})
	if err != nil {
		return repository.TranslateError(err)
	}

	req.Status = model.AccessRequestApproved
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &now

	s.audit.Log(ctx, AuditEntry{
		UserID:     reviewerID,
		Action:     model.ActionApproveRequest,
		EntityType: model.EntityAccessRequest,
		EntityID:   strconv.FormatInt(requestID, 10),
		Details: map[string]interface{}{
			"user_id":         req.UserID,
			"price_group_ids": groups,
			"branch_ids":      branches,
		},
	})

	if s.notifier != nil {
		s.notifier.NotifyApproved(ctx, req)
	}
	return nil
}

// checkGrantTargets 校验价格组和分店都存在
func checkGrantTargets(ctx context.Context, tx *repository.AccessUnitOfWork, groups, branches []int64) error {
	n, err := tx.PriceGroups.CountByIDs(ctx, groups)
	if err != nil {
		return err
	}
	if n != int64(len(groups)) {
		return apperr.Validation("one or more price groups do not exist")
	}

	if len(branches) == 0 {
		return nil
	}
	n, err = tx.Branches.CountByIDs(ctx, branches)
	if err != nil {
		return err
	}
	if n != int64(len(branches)) {
		return apperr.Validation("one or more branches do not exist")
	}
	return nil
}

// Reject 拒绝申请，不涉及授权
func (s *AccessRequestService) Reject(ctx context.Context, requestID, reviewerID int64, reason *string) error {
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}
	now := s.now()

	var req *model.AccessRequest
	err := s.uow.Transaction(ctx, func(tx *repository.AccessUnitOfWork) error {
		var err error
		if req, err = loadPending(ctx, tx, requestID); err != nil {
			return err
		}

		applied, err := tx.Requests.Transition(ctx, requestID, repository.Transition{
			To:           model.AccessRequestRejected,
			ReviewedBy:   reviewerID,
			ReviewedAt:   now,
			RejectReason: reason,
		})
		if err != nil {
			return err
		}
		if !applied {
			return ErrRequestAlreadyHandled
		}
		return nil
	})
	if err != nil {
		return repository.TranslateError(err)
	}

	details := map[string]interface{}{"user_id": req.UserID}
	if reason != nil {
		details["reason"] = *reason
	}
	s.audit.Log(ctx, AuditEntry{
		UserID:     reviewerID,
		Action:     model.ActionRejectRequest,
		EntityType: model.EntityAccessRequest,
		EntityID:   strconv.FormatInt(requestID, 10),
		Details:    details,
	})

	log.Info().Int64("request_id", requestID).Int64("reviewer_id", reviewerID).Msg("access request rejected")
	return nil
}

// ==================== 查询 ====================

// List 后台申请列表
func (s *AccessRequestService) List(ctx context.Context, filter repository.AccessRequestFilter) ([]model.AccessRequest, int64, error) {
	if filter.Status != "" {
		switch model.AccessRequestStatus(filter.Status) {
		case model.AccessRequestPending, model.AccessRequestApproved, model.AccessRequestRejected:
		default:
			return nil, 0, apperr.Validationf("invalid status: %s", filter.Status)
		}
	}
	return s.uow.Requests.List(ctx, filter)
}

// Get 申请详情
func (s *AccessRequestService) Get(ctx context.Context, id int64) (*model.AccessRequest, error) {
	req, err := s.uow.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// MyRequests 当前用户的申请记录
func (s *AccessRequestService) MyRequests(ctx context.Context, userID int64) ([]model.AccessRequest, error) {
	list, err := s.uow.Requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests of user %d: %w", userID, err)
	}
	return list, nil
}
