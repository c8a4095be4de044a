package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// DefaultPermissionCacheTTL 权限缓存默认有效期
const DefaultPermissionCacheTTL = 60 * time.Second

// ==================== 默认权限表 ====================

// DefaultRolePermissions 内置默认权限
func DefaultRolePermissions() map[model.Role][]model.Permission {
	return map[model.Role][]model.Permission{
		model.RoleAdmin: model.AllPermissions(),
		model.RoleOperator: {
			model.PermViewDashboard,
			model.PermManageUsers,
			model.PermManageBranches,
			model.PermManagePriceGroups,
			model.PermUploadImages,
			model.PermManageAnnouncements,
			model.PermApproveRequests,
			model.PermViewAnalytics,
		},
		model.RoleWorker: {
			model.PermViewDashboard,
			model.PermUploadImages,
		},
		model.RoleUser: {},
	}
}

// MergeRolePermissions 合并默认表与数据库覆盖
// 已配置的角色（有配置标记或有行）以覆盖表为准，可以为空；未配置的角色使用默认值；admin 恒为全部权限
func MergeRolePermissions(defaults map[model.Role][]model.Permission, overrides []model.RolePermission, configured []model.Role) map[model.Role][]model.Permission {
	stored := make(map[model.Role]map[model.Permission]bool)
	for _, role := range configured {
		if stored[role] == nil {
			stored[role] = make(map[model.Permission]bool)
		}
	}
	for _, row := range overrides {
		if row.Role == model.RoleAdmin {
			continue
		}
		if stored[row.Role] == nil {
			stored[row.Role] = make(map[model.Permission]bool)
		}
		if model.IsValidPermission(string(row.Permission)) {
			stored[row.Role][row.Permission] = true
		}
	}

	merged := make(map[model.Role][]model.Permission, len(model.AllRoles()))
	for _, role := range model.EditableRoles() {
		set, ok := stored[role]
		if !ok {
			merged[role] = append([]model.Permission{}, defaults[role]...)
			continue
		}
		perms := []model.Permission{}
		for _, p := range model.AllPermissions() {
			if set[p] {
				perms = append(perms, p)
			}
		}
		merged[role] = perms
	}
	merged[model.RoleAdmin] = model.AllPermissions()
	return merged
}

// failClosedPermissions 存储不可用时的结果：admin 全部，其它角色为空
func failClosedPermissions() map[model.Role][]model.Permission {
	result := map[model.Role][]model.Permission{model.RoleAdmin: model.AllPermissions()}
	for _, role := range model.EditableRoles() {
		result[role] = []model.Permission{}
	}
	return result
}

func copyPermissions(src map[model.Role][]model.Permission) map[model.Role][]model.Permission {
	dst := make(map[model.Role][]model.Permission, len(src))
	for role, perms := range src {
		dst[role] = append([]model.Permission{}, perms...)
	}
	return dst
}

// ==================== PermissionRegistry ====================

// PermissionRegistry 角色权限解析
type PermissionRegistry struct {
	repo  repository.RolePermissionRepository
	cache *PermissionCache
	audit AuditLogger
	bus   PermissionBus
}

// NewPermissionRegistry 创建权限注册表，bus 可为 nil
func NewPermissionRegistry(repo repository.RolePermissionRepository, cache *PermissionCache, audit AuditLogger, bus PermissionBus) *PermissionRegistry {
	if cache == nil {
		cache = NewPermissionCache(DefaultPermissionCacheTTL, nil)
	}
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &PermissionRegistry{repo: repo, cache: cache, audit: audit, bus: bus}
}

// GetRolePermissions 当前生效的角色权限表（副本）
func (r *PermissionRegistry) GetRolePermissions(ctx context.Context) map[model.Role][]model.Permission {
	return copyPermissions(r.snapshot(ctx))
}

func (r *PermissionRegistry) snapshot(ctx context.Context) map[model.Role][]model.Permission {
	if snap, ok := r.cache.Get(); ok {
		return snap
	}

	table, err := r.repo.ListAll(ctx)
	if err != nil {
		// 失败结果不缓存，下次请求重试
		log.Error().Err(err).Msg("load role permissions failed, denying non-admin permissions")
		return failClosedPermissions()
	}

	merged := MergeRolePermissions(DefaultRolePermissions(), table.Rows, table.Configured)
	r.cache.Set(merged)
	return merged
}

// GetPermissions 某角色的权限
func (r *PermissionRegistry) GetPermissions(ctx context.Context, role model.Role) []model.Permission {
	return append([]model.Permission{}, r.snapshot(ctx)[role]...)
}

// HasPermission 角色是否拥有权限
func (r *PermissionRegistry) HasPermission(ctx context.Context, role model.Role, permission model.Permission) bool {
	if role == model.RoleAdmin {
		return model.IsValidPermission(string(permission))
	}
	for _, p := range r.snapshot(ctx)[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// SetRolePermissions 整体替换某个非 admin 角色的权限
func (r *PermissionRegistry) SetRolePermissions(ctx context.Context, actorID int64, role model.Role, permissions []model.Permission) ([]model.Permission, error) {
	if role == model.RoleAdmin {
		return nil, ErrAdminPermissionsLocked
	}
	if !model.IsValidRole(string(role)) {
		return nil, ErrUnknownRole
	}

	seen := make(map[model.Permission]bool, len(permissions))
	perms := make([]model.Permission, 0, len(permissions))
	var unknown []string
	for _, p := range permissions {
		if !model.IsValidPermission(string(p)) {
			unknown = append(unknown, string(p))
			continue
		}
		if !seen[p] {
			seen[p] = true
			perms = append(perms, p)
		}
	}
	if len(unknown) > 0 {
		return nil, apperr.Validationf("invalid permissions: %s", strings.Join(unknown, ", "))
	}

	if err := r.repo.ReplaceRole(ctx, role, perms, actorID); err != nil {
		return nil, err
	}

	r.cache.Invalidate()
	if r.bus != nil {
		if err := r.bus.Publish(ctx); err != nil {
			log.Warn().Err(err).Msg("publish permission invalidation failed")
		}
	}

	r.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionUpdateRolePermissions,
		EntityType: model.EntityRole,
		EntityID:   string(role),
		Details: map[string]interface{}{
			"role":        role,
			"permissions": perms,
		},
	})

	return perms, nil
}

// Invalidate 丢弃缓存
func (r *PermissionRegistry) Invalidate() {
	r.cache.Invalidate()
}
