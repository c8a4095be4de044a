package service

import (
	"context"
	"strconv"
	"strings"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// BranchService 分店管理
type BranchService struct {
	repo   repository.BranchRepository
	grants repository.GrantRepository
	audit  AuditLogger
}

// NewBranchService 创建分店服务
func NewBranchService(repo repository.BranchRepository, grants repository.GrantRepository, audit AuditLogger) *BranchService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &BranchService{repo: repo, grants: grants, audit: audit}
}

// List 分店列表，按 sort_order, name 排序
func (s *BranchService) List(ctx context.Context, activeOnly bool) ([]model.Branch, error) {
	return s.repo.List(ctx, activeOnly)
}

// Create 创建分店，code 统一大写
func (s *BranchService) Create(ctx context.Context, actorID int64, req *dto.CreateBranchRequest) (*model.Branch, error) {
	name := strings.TrimSpace(req.Name)
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if name == "" || code == "" {
		return nil, apperr.Validation("name and code are required")
	}

	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBranchCodeExists
	}

	maxOrder, err := s.repo.MaxSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	branch := &model.Branch{
		Name:        name,
		Code:        code,
		Description: req.Description,
		Address:     req.Address,
		SortOrder:   maxOrder + 1,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.Create(ctx, branch); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, ErrBranchCodeExists
		}
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionCreateBranch,
		EntityType: model.EntityBranch,
		EntityID:   strconv.FormatInt(branch.ID, 10),
		Details:    map[string]interface{}{"name": name, "code": code},
	})
	return branch, nil
}

// Update 更新分店，只更新传入的字段
func (s *BranchService) Update(ctx context.Context, actorID, id int64, req *dto.UpdateBranchRequest) (*model.Branch, error) {
	branch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code == "" {
			return nil, apperr.Validation("code cannot be empty")
		}
		if code != branch.Code {
			other, err := s.repo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, ErrBranchCodeExists
			}
		}
		fields["code"] = code
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return branch, nil
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, ErrBranchCodeExists
		}
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionUpdateBranch,
		EntityType: model.EntityBranch,
		EntityID:   strconv.FormatInt(id, 10),
		Details:    fields,
	})
	return s.repo.GetByID(ctx, id)
}

// Delete 删除分店，仍有用户分配时拒绝
func (s *BranchService) Delete(ctx context.Context, actorID, id int64) error {
	branch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if branch == nil {
		return ErrBranchNotFound
	}

	n, err := s.grants.CountUsersByBranch(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrBranchInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionDeleteBranch,
		EntityType: model.EntityBranch,
		EntityID:   strconv.FormatInt(id, 10),
		Details:    map[string]interface{}{"code": branch.Code},
	})
	return nil
}
