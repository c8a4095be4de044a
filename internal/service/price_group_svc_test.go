package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
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

type recordingImageNotifier struct {
	mu      sync.Mutex
	notices []PriceImageNotice
}

func (n *recordingImageNotifier) PriceImageUploaded(_ context.Context, notice PriceImageNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

type priceGroupFixture struct {
	db       *gorm.DB
	svc      *PriceGroupService
	root     string
	audit    *recordingAudit
	notifier *recordingImageNotifier
	clock    *fixedClock
}

func newPriceGroupFixture(t *testing.T) *priceGroupFixture {
	db := setupTestDB(t)
	root := t.TempDir()
	storage, err := NewStorageService(StorageConfig{Provider: "local", BasePath: root, PublicURL: "http://localhost:8080"})
	require.NoError(t, err)

	audit := &recordingAudit{}
	notifier := &recordingImageNotifier{}
	clock := newFixedClock()
	svc := NewPriceGroupService(repository.NewAccessUnitOfWork(db), storage, notifier, audit)
	svc.now = clock.Now
	return &priceGroupFixture{db: db, svc: svc, root: root, audit: audit, notifier: notifier, clock: clock}
}

func TestPriceGroupService_CRUD(t *testing.T) {
	f := newPriceGroupFixture(t)
	ctx := context.Background()
	branch := createBranch(t, f.db, "B1")

	g1, err := f.svc.Create(ctx, 1, &dto.CreatePriceGroupRequest{Name: "Gold", BranchID: &branch.ID})
	require.NoError(t, err)
	g2, err := f.svc.Create(ctx, 1, &dto.CreatePriceGroupRequest{Name: "Silver"})
	require.NoError(t, err)
	assert.Equal(t, g1.SortOrder+1, g2.SortOrder)

	missing := int64(404)
	_, err = f.svc.Create(ctx, 1, &dto.CreatePriceGroupRequest{Name: "X", BranchID: &missing})
	assert.ErrorIs(t, err, ErrBranchNotFound)
	_, err = f.svc.Create(ctx, 1, &dto.CreatePriceGroupRequest{Name: "  "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	zero := int64(0)
	updated, err := f.svc.Update(ctx, 1, g1.ID, &dto.UpdatePriceGroupRequest{BranchID: &zero, LineGroupID: strPtr("C123")})
	require.NoError(t, err)
	assert.Nil(t, updated.BranchID)
	assert.Equal(t, "C123", updated.LineGroupID)

	list, err := f.svc.List(ctx, &dto.PriceGroupListRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.Equal(t, []model.LogAction{model.ActionCreateGroup, model.ActionCreateGroup, model.ActionUpdateGroup}, f.audit.actions())
}

func TestPriceGroupService_UploadAndDelete(t *testing.T) {
	f := newPriceGroupFixture(t)
	ctx := context.Background()
	user := createUser(t, f.db, "U1", model.RoleUser)
	group := createGroup(t, f.db, "Gold")
	require.NoError(t, f.db.Create(&model.UserGroupAccess{UserID: user.ID, PriceGroupID: group.ID}).Error)

	info, err := f.svc.UploadImage(ctx, 9, group.ID, UploadFile{Name: "p.png", ContentType: "image/png", Data: pngHeader},
		dto.UploadImageOptions{SendLine: true, SendTelegram: true, IsFirstImage: true})
	require.NoError(t, err)
	assert.Contains(t, info.URL, "/api/files/price-groups/")
	assert.Equal(t, int64(9), info.UploadedBy)

	full := filepath.Join(f.root, filepath.FromSlash(info.FilePath))
	_, err = os.Stat(full)
	require.NoError(t, err, "文件未写入")

	require.Len(t, f.notifier.notices, 1)
	assert.True(t, f.notifier.notices[0].FirstImage)
	assert.Equal(t, group.ID, f.notifier.notices[0].Group.ID)

	entry := f.audit.last()
	assert.Equal(t, model.ActionUploadImage, entry.Action)
	assert.Equal(t, model.EntityImage, entry.EntityType)
	assert.Equal(t, "p.png", entry.Details["file_name"])

	// 删除价格组同时删除授权、图片记录和文件
	require.NoError(t, f.svc.Delete(ctx, 9, group.ID))
	assert.Equal(t, int64(0), countRows(t, f.db, "user_group_access"))
	assert.Equal(t, int64(0), countRows(t, f.db, "price_group_images"))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, f.svc.Delete(ctx, 9, group.ID), ErrPriceGroupNotFound)
}

func TestPriceGroupService_UploadRejected(t *testing.T) {
	f := newPriceGroupFixture(t)
	ctx := context.Background()
	group := createGroup(t, f.db, "Gold")

	_, err := f.svc.UploadImage(ctx, 1, group.ID, UploadFile{Name: "a.txt", ContentType: "text/plain", Data: []byte("hello")}, dto.UploadImageOptions{})
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, err = f.svc.UploadImage(ctx, 1, 999, UploadFile{Name: "p.png", Data: pngHeader}, dto.UploadImageOptions{})
	assert.ErrorIs(t, err, ErrPriceGroupNotFound)

	assert.Empty(t, f.notifier.notices)
	assert.Equal(t, int64(0), countRows(t, f.db, "price_group_images"))
}

func TestPriceGroupService_DeleteImage(t *testing.T) {
	f := newPriceGroupFixture(t)
	ctx := context.Background()
	group := createGroup(t, f.db, "Gold")

	info, err := f.svc.UploadImage(ctx, 1, group.ID, UploadFile{Name: "p.png", Data: pngHeader}, dto.UploadImageOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.notices, "未选择渠道不通知")

	require.NoError(t, f.svc.DeleteImage(ctx, 1, info.ID))
	assert.ErrorIs(t, f.svc.DeleteImage(ctx, 1, info.ID), ErrImageNotFound)
	assert.Equal(t, model.ActionDeleteImage, f.audit.last().Action)
}

func TestPriceGroupService_MemberViews(t *testing.T) {
	f := newPriceGroupFixture(t)
	ctx := context.Background()
	user := createUser(t, f.db, "U1", model.RoleUser)
	gold := createGroup(t, f.db, "Gold")
	silver := createGroup(t, f.db, "Silver")
	bronze := createGroup(t, f.db, "Bronze")

	expired := f.clock.Now().Add(-time.Minute)
	require.NoError(t, f.db.Create(&model.UserGroupAccess{UserID: user.ID, PriceGroupID: gold.ID}).Error)
	require.NoError(t, f.db.Create(&model.UserGroupAccess{UserID: user.ID, PriceGroupID: silver.ID, ExpiresAt: &expired}).Error)

	mine, err := f.svc.ListForMember(ctx, user.ID, model.RoleUser)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, gold.ID, mine[0].ID)

	all, err := f.svc.ListForMember(ctx, 0, model.RoleOperator)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.MemberImages(ctx, user.ID, model.RoleUser, gold.ID)
	assert.NoError(t, err)
	_, err = f.svc.MemberImages(ctx, user.ID, model.RoleUser, silver.ID)
	assert.ErrorIs(t, err, ErrPriceGroupNotFound)
	_, err = f.svc.MemberImages(ctx, user.ID, model.RoleAdmin, bronze.ID)
	assert.NoError(t, err)
}
