package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

func newUserFixture(t *testing.T) (*gorm.DB, *UserService, *recordingAudit, *fixedClock) {
	db := setupTestDB(t)
	audit := &recordingAudit{}
	clock := newFixedClock()
	reg := NewPermissionRegistry(repository.NewRolePermissionRepository(db), nil, nil, nil)
	svc := NewUserService(repository.NewAccessUnitOfWork(db), NewGrantApplier(), reg, audit)
	svc.now = clock.Now
	return db, svc, audit, clock
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserService_ListUsers(t *testing.T) {
	db, svc, _, _ := newUserFixture(t)
	ctx := context.Background()
	createUser(t, db, "U1", model.RoleUser)
	createUser(t, db, "U2", model.RoleWorker)
	createUser(t, db, "A1", model.RoleAdmin)

	resp, err := svc.ListUsers(ctx, &dto.UserListRequest{Role: string(model.RoleWorker), Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.List, 1)
	assert.Equal(t, "worker", resp.List[0].Role)

	resp, err = svc.ListUsers(ctx, &dto.UserListRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
}

func TestUserService_UpdateUser(t *testing.T) {
	db, svc, audit, _ := newUserFixture(t)
	ctx := context.Background()
	admin := createUser(t, db, "A1", model.RoleAdmin)
	user := createUser(t, db, "U1", model.RoleUser)

	info, err := svc.UpdateUser(ctx, Actor{ID: admin.ID, Role: model.RoleAdmin}, user.ID, &dto.UpdateUserRequest{
		ShopName: strPtr(" New Shop "),
		Role:     strPtr(string(model.RoleWorker)),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Shop", info.ShopName)
	assert.Equal(t, "worker", info.Role)

	entry := audit.last()
	assert.Equal(t, model.ActionUpdateUser, entry.Action)
	assert.Equal(t, "New Shop", entry.Details["shop_name"])
}

func TestUserService_UpdateUser_Restrictions(t *testing.T) {
	db, svc, _, _ := newUserFixture(t)
	ctx := context.Background()
	operator := createUser(t, db, "O1", model.RoleOperator)
	admin := createUser(t, db, "A1", model.RoleAdmin)
	user := createUser(t, db, "U1", model.RoleUser)
	asOperator := Actor{ID: operator.ID, Role: model.RoleOperator}

	// operator 不能授予 admin
	_, err := svc.UpdateUser(ctx, asOperator, user.ID, &dto.UpdateUserRequest{Role: strPtr("admin")})
	assert.ErrorIs(t, err, ErrCannotModifyAdmin)

	// operator 不能修改 admin
	_, err = svc.UpdateUser(ctx, asOperator, admin.ID, &dto.UpdateUserRequest{Note: strPtr("x")})
	assert.ErrorIs(t, err, ErrCannotModifyAdmin)

	// operator 默认没有 toggle_user_status
	_, err = svc.UpdateUser(ctx, asOperator, user.ID, &dto.UpdateUserRequest{IsActive: boolPtr(false)})
	assert.ErrorIs(t, err, ErrToggleStatusDenied)

	_, err = svc.UpdateUser(ctx, asOperator, 999, &dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrUserNotFound)

	info, err := svc.UpdateUser(ctx, Actor{ID: admin.ID, Role: model.RoleAdmin}, user.ID, &dto.UpdateUserRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, info.IsActive)
}

func TestUserService_UpdateUser_ToggleOnly(t *testing.T) {
	db, svc, _, _ := newUserFixture(t)
	ctx := context.Background()
	worker := createUser(t, db, "W1", model.RoleWorker)
	user := createUser(t, db, "U1", model.RoleUser)

	// 另建 registry 写入配置，svc 的 registry 尚未缓存
	reg := NewPermissionRegistry(repository.NewRolePermissionRepository(db), nil, nil, nil)
	_, err := reg.SetRolePermissions(ctx, 0, model.RoleWorker, []model.Permission{model.PermToggleUserStatus})
	require.NoError(t, err)

	asWorker := Actor{ID: worker.ID, Role: model.RoleWorker}
	_, err = svc.UpdateUser(ctx, asWorker, user.ID, &dto.UpdateUserRequest{Note: strPtr("x")})
	assert.ErrorIs(t, err, ErrManageUsersDenied)

	_, err = svc.UpdateUser(ctx, asWorker, user.ID, &dto.UpdateUserRequest{IsActive: boolPtr(false), Note: strPtr("x")})
	assert.ErrorIs(t, err, ErrManageUsersDenied)

	info, err := svc.UpdateUser(ctx, asWorker, user.ID, &dto.UpdateUserRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, info.IsActive)
}

func TestUserService_DeleteUser(t *testing.T) {
	db, svc, audit, _ := newUserFixture(t)
	ctx := context.Background()
	admin := createUser(t, db, "A1", model.RoleAdmin)
	user := createUser(t, db, "U1", model.RoleUser)
	asAdmin := Actor{ID: admin.ID, Role: model.RoleAdmin}

	assert.ErrorIs(t, svc.DeleteUser(ctx, asAdmin, admin.ID), ErrCannotDeleteSelf)
	require.NoError(t, svc.DeleteUser(ctx, asAdmin, user.ID))

	// 软删除，记录仍在
	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.False(t, stored.IsActive)
	assert.Equal(t, model.ActionDeleteUser, audit.last().Action)
}

func TestUserService_GroupGrants(t *testing.T) {
	db, svc, audit, clock := newUserFixture(t)
	ctx := context.Background()
	admin := createUser(t, db, "A1", model.RoleAdmin)
	user := createUser(t, db, "U1", model.RoleUser)
	g1 := createGroup(t, db, "g1")
	g2 := createGroup(t, db, "g2")
	expires := clock.Now().Add(-time.Hour)

	require.NoError(t, svc.GrantGroups(ctx, admin.ID, user.ID, &dto.GrantGroupsRequest{PriceGroupIDs: []int64{g1.ID}}))
	require.NoError(t, svc.GrantGroups(ctx, admin.ID, user.ID, &dto.GrantGroupsRequest{PriceGroupIDs: []int64{g1.ID, g2.ID}, ExpiresAt: &expires}))
	assert.Equal(t, model.ActionGrantGroup, audit.last().Action)

	detail, err := svc.GetUserDetail(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, detail.Groups, 2)
	byID := map[int64]dto.UserGroupGrant{}
	for _, g := range detail.Groups {
		byID[g.PriceGroupID] = g
	}
	assert.Equal(t, "g1", byID[g1.ID].Name)
	assert.Nil(t, byID[g1.ID].ExpiresAt, "已有授权保持不变")
	assert.True(t, byID[g2.ID].Expired)

	err = svc.GrantGroups(ctx, admin.ID, user.ID, &dto.GrantGroupsRequest{PriceGroupIDs: []int64{404}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.RevokeGroup(ctx, admin.ID, user.ID, g1.ID))
	assert.ErrorIs(t, svc.RevokeGroup(ctx, admin.ID, user.ID, g1.ID), ErrGrantNotFound)
	assert.Equal(t, int64(1), countRows(t, db, "user_group_access"))
}

func TestUserService_Branches(t *testing.T) {
	db, svc, audit, _ := newUserFixture(t)
	ctx := context.Background()
	admin := createUser(t, db, "A1", model.RoleAdmin)
	user := createUser(t, db, "U1", model.RoleUser)
	b1 := createBranch(t, db, "B1")
	b2 := createBranch(t, db, "B2")

	require.NoError(t, svc.AssignBranches(ctx, admin.ID, user.ID, []int64{b1.ID, b2.ID, b1.ID}))
	assert.Equal(t, int64(2), countRows(t, db, "user_branches"))

	err := svc.AssignBranches(ctx, admin.ID, user.ID, []int64{77})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	removed, err := svc.UnassignBranches(ctx, admin.ID, user.ID, []int64{b1.ID, 77})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, model.ActionUnassignBranch, audit.last().Action)

	detail, err := svc.GetUserDetail(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b2.ID}, detail.Branches)
}
