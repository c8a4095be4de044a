package service

import (
	"context"
	"time"

	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// GrantApplier 把审核结果写成授权记录
// 调用方传入事务内的 GrantRepository；重复 ID 合并，已存在的授权不报错
type GrantApplier struct {
	now func() time.Time
}

// NewGrantApplier 创建授权写入器
func NewGrantApplier() *GrantApplier {
	return &GrantApplier{now: time.Now}
}

// ApplyGroupGrants 授予价格组访问权限
func (g *GrantApplier) ApplyGroupGrants(ctx context.Context, grants repository.GrantRepository, userID int64, priceGroupIDs []int64, grantedBy int64, expiresAt *time.Time) error {
	for _, gid := range uniqueIDs(priceGroupIDs) {
		row := model.UserGroupAccess{
			UserID:       userID,
			PriceGroupID: gid,
			ExpiresAt:    expiresAt,
			GrantedBy:    optionalID(grantedBy),
			CreatedAt:    g.now(),
		}
		if err := grants.InsertGroupAccess(ctx, []model.UserGroupAccess{row}); err != nil {
			return err
		}
	}
	return nil
}

// ApplyBranchGrants 分配分店
func (g *GrantApplier) ApplyBranchGrants(ctx context.Context, grants repository.GrantRepository, userID int64, branchIDs []int64, assignedBy int64) error {
	for _, bid := range uniqueIDs(branchIDs) {
		row := model.UserBranch{
			UserID:     userID,
			BranchID:   bid,
			AssignedBy: optionalID(assignedBy),
			CreatedAt:  g.now(),
		}
		if err := grants.InsertBranches(ctx, []model.UserBranch{row}); err != nil {
			return err
		}
	}
	return nil
}

// uniqueIDs 去重并保持原顺序
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
