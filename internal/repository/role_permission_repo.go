package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"line_price_portal/internal/model"
)

// ==================== RolePermissionRepository 角色权限仓库 ====================

// RolePermissionTable 覆盖配置快照
type RolePermissionTable struct {
	Rows       []model.RolePermission
	Configured []model.Role // 显式配置过的角色，含已清空的角色
}

// RolePermissionRepository 角色权限覆盖配置仓库接口
type RolePermissionRepository interface {
	ListAll(ctx context.Context) (*RolePermissionTable, error)
	ReplaceRole(ctx context.Context, role model.Role, permissions []model.Permission, updatedBy int64) error
}

type rolePermissionRepository struct {
	db *gorm.DB
}

// NewRolePermissionRepository 创建角色权限仓库
func NewRolePermissionRepository(db *gorm.DB) RolePermissionRepository {
	return &rolePermissionRepository{db: db}
}

// ListAll 读取全部覆盖配置与已配置角色（同一事务内读取）
func (r *rolePermissionRepository) ListAll(ctx context.Context) (*RolePermissionTable, error) {
	table := &RolePermissionTable{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("role").Order("permission").Find(&table.Rows).Error; err != nil {
			return err
		}
		var configs []model.RolePermissionConfig
		if err := tx.Order("role").Find(&configs).Error; err != nil {
			return err
		}
		for _, c := range configs {
			table.Configured = append(table.Configured, c.Role)
		}
		return nil
	})
	if err != nil {
		return nil, TranslateError(err)
	}
	return table, nil
}

// ReplaceRole 整体替换某角色的权限（事务内先删后插）并标记该角色已配置
func (r *rolePermissionRepository) ReplaceRole(ctx context.Context, role model.Role, permissions []model.Permission, updatedBy int64) error {
	return TranslateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", role).Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		if len(permissions) > 0 {
			rows := make([]model.RolePermission, 0, len(permissions))
			for _, p := range permissions {
				rows = append(rows, model.RolePermission{Role: role, Permission: p})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		marker := model.RolePermissionConfig{Role: role, UpdatedBy: updatedBy, UpdatedAt: time.Now()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_by", "updated_at"}),
		}).Create(&marker).Error
	}))
}
