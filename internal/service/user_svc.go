package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// ==================== UserService 用户管理 ====================

// Actor 发起操作的用户
type Actor struct {
	ID   int64
	Role model.Role
}

// PermissionChecker 权限判断
type PermissionChecker interface {
	HasPermission(ctx context.Context, role model.Role, permission model.Permission) bool
}

// UserService 用户服务（资料、授权、分店）
type UserService struct {
	uow         *repository.AccessUnitOfWork
	grants      *GrantApplier
	permissions PermissionChecker
	audit       AuditLogger
	now         func() time.Time
}

// NewUserService 创建用户服务
func NewUserService(uow *repository.AccessUnitOfWork, grants *GrantApplier, permissions PermissionChecker, audit AuditLogger) *UserService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &UserService{
		uow:         uow,
		grants:      grants,
		permissions: permissions,
		audit:       audit,
		now:         time.Now,
	}
}

// ==================== 查询 ====================

// GetProfile 获取当前用户信息
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// ListUsers 用户列表
func (s *UserService) ListUsers(ctx context.Context, req *dto.UserListRequest) (*dto.UserListResponse, error) {
	users, total, err := s.uow.Users.List(ctx, repository.UserFilter{
		Keyword:  strings.TrimSpace(req.Keyword),
		Role:     req.Role,
		IsActive: req.IsActive,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*dto.UserInfo, len(users))
	for i := range users {
		list[i] = toUserInfo(&users[i])
	}
	return &dto.UserListResponse{List: list, Total: total}, nil
}

// GetUserDetail 用户详情，含价格组授权和分店
func (s *UserService) GetUserDetail(ctx context.Context, userID int64) (*dto.UserDetail, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.uow.Grants.ListGroupAccessByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.uow.PriceGroups.List(ctx, repository.PriceGroupFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	branches, err := s.uow.Grants.ListBranchesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	branchIDs := make([]int64, len(branches))
	for i, b := range branches {
		branchIDs[i] = b.BranchID
	}

	return &dto.UserDetail{
		UserInfo: toUserInfo(user),
		Groups:   toGroupGrants(rows, names, s.now()),
		Branches: branchIDs,
	}, nil
}

// ==================== 修改 ====================

// UpdateUser 更新用户资料、角色、状态
// 只有 admin 可以修改 admin 账号或授予 admin 角色
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, userID int64, req *dto.UpdateUserRequest) (*dto.UserInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.ShopName != nil {
		fields["shop_name"] = strings.TrimSpace(*req.ShopName)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.BankInfo != nil {
		fields["bank_info"] = *req.BankInfo
	}
	if req.Note != nil {
		fields["note"] = *req.Note
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if !model.IsValidRole(string(role)) {
			return nil, ErrUnknownRole
		}
		if role == model.RoleAdmin && actor.Role != model.RoleAdmin {
			return nil, ErrCannotModifyAdmin
		}
		fields["role"] = role
	}
	if req.IsActive != nil {
		if !s.permissions.HasPermission(ctx, actor.Role, model.PermToggleUserStatus) {
			return nil, ErrToggleStatusDenied
		}
		if !*req.IsActive && actor.ID == userID {
			return nil, ErrCannotDeleteSelf
		}
		fields["is_active"] = *req.IsActive
	}
	if user.Role == model.RoleAdmin && actor.Role != model.RoleAdmin {
		return nil, ErrCannotModifyAdmin
	}
	// 只有 toggle_user_status 时只能改启用状态
	if (len(fields) > 1 || (len(fields) == 1 && req.IsActive == nil)) &&
		!s.permissions.HasPermission(ctx, actor.Role, model.PermManageUsers) {
		return nil, ErrManageUsersDenied
	}
	if len(fields) == 0 {
		return toUserInfo(user), nil
	}

	if err := s.uow.Users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, repository.TranslateError(err)
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actor.ID,
		Action:     model.ActionUpdateUser,
		EntityType: model.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		Details:    fields,
	})

	return s.GetProfile(ctx, userID)
}

// DeleteUser 软删除，只置 is_active=false
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, userID int64) error {
	if actor.ID == userID {
		return ErrCannotDeleteSelf
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin && actor.Role != model.RoleAdmin {
		return ErrCannotModifyAdmin
	}

	if err := s.uow.Users.SetActive(ctx, userID, false); err != nil {
		return repository.TranslateError(err)
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actor.ID,
		Action:     model.ActionDeleteUser,
		EntityType: model.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		Details:    map[string]interface{}{"name": user.Name},
	})
	return nil
}

// ==================== 授权 ====================

// GrantGroups 添加价格组授权，已存在的忽略
func (s *UserService) GrantGroups(ctx context.Context, actorID, userID int64, req *dto.GrantGroupsRequest) error {
	groups := uniqueIDs(req.PriceGroupIDs)
	if len(groups) == 0 {
		return ErrPriceGroupsRequired
	}

	err := s.uow.Transaction(ctx, func(tx *repository.AccessUnitOfWork) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if err := checkGrantTargets(ctx, tx, groups, nil); err != nil {
			return err
		}
		return s.grants.ApplyGroupGrants(ctx, tx.Grants, userID, groups, actorID, req.ExpiresAt)
	})
	if err != nil {
		return repository.TranslateError(err)
	}

	details := map[string]interface{}{"price_group_ids": groups}
	if req.ExpiresAt != nil {
		details["expires_at"] = req.ExpiresAt.Format(time.RFC3339)
	}
	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionGrantGroup,
		EntityType: model.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		Details:    details,
	})
	return nil
}

// RevokeGroup 移除价格组授权
func (s *UserService) RevokeGroup(ctx context.Context, actorID, userID, priceGroupID int64) error {
	removed, err := s.uow.Grants.DeleteGroupAccess(ctx, userID, priceGroupID)
	if err != nil {
		return repository.TranslateError(err)
	}
	if !removed {
		return ErrGrantNotFound
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionRevokeGroup,
		EntityType: model.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		Details:    map[string]interface{}{"price_group_id": priceGroupID},
	})
	return nil
}

// AssignBranches 分配分店
func (s *UserService) AssignBranches(ctx context.Context, actorID, userID int64, branchIDs []int64) error {
	branches := uniqueIDs(branchIDs)
	if len(branches) == 0 {
		return apperr.Validation("branch_ids is required")
	}

	err := s.uow.Transaction(ctx, func(tx *repository.AccessUnitOfWork) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		n, err := tx.Branches.CountByIDs(ctx, branches)
		if err != nil {
			return err
		}
		if n != int64(len(branches)) {
			return apperr.Validation("one or more branches do not exist")
		}
		return s.grants.ApplyBranchGrants(ctx, tx.Grants, userID, branches, actorID)
	})
	if err != nil {
		return repository.TranslateError(err)
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionAssignBranch,
		EntityType: model.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		Details:    map[string]interface{}{"branch_ids": branches},
	})
	return nil
}

// UnassignBranches 取消分店分配，返回实际移除数量
func (s *UserService) UnassignBranches(ctx context.Context, actorID, userID int64, branchIDs []int64) (int, error) {
	branches := uniqueIDs(branchIDs)
	removed := 0
	err := s.uow.Transaction(ctx, func(tx *repository.AccessUnitOfWork) error {
		for _, bid := range branches {
			ok, err := tx.Grants.DeleteBranch(ctx, userID, bid)
			if err != nil {
				return err
			}
			if ok {
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, repository.TranslateError(err)
	}

	if removed > 0 {
		s.audit.Log(ctx, AuditEntry{
			UserID:     actorID,
			Action:     model.ActionUnassignBranch,
			EntityType: model.EntityUser,
			EntityID:   strconv.FormatInt(userID, 10),
			Details:    map[string]interface{}{"branch_ids": branches},
		})
	}
	return removed, nil
}

// ==================== 辅助方法 ====================

func (s *UserService) getUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.uow.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, repository.TranslateError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
