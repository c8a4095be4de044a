package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

func newAnnouncementFixture(t *testing.T) (*AnnouncementService, *recordingAudit) {
	db := setupTestDB(t)
	storage, err := NewStorageService(StorageConfig{Provider: "local", BasePath: t.TempDir()})
	require.NoError(t, err)
	audit := &recordingAudit{}
	return NewAnnouncementService(repository.NewAnnouncementRepository(db), storage, audit), audit
}

func TestAnnouncementService_Lifecycle(t *testing.T) {
	svc, audit := newAnnouncementFixture(t)
	ctx := context.Background()
	png := func(name string) UploadFile { return UploadFile{Name: name, ContentType: "image/png", Data: pngHeader} }

	_, err := svc.Create(ctx, 1, &dto.AnnouncementForm{Title: " "}, nil)
	assert.ErrorIs(t, err, ErrTitleRequired)

	created, err := svc.Create(ctx, 1, &dto.AnnouncementForm{Title: "Holiday", Body: "Closed Monday"}, []UploadFile{png("a.png"), png("b.png")})
	require.NoError(t, err)
	require.Len(t, created.ImageURLs, 2)
	assert.NotEmpty(t, created.ImagePath)
	assert.False(t, created.IsPublished)

	// 未发布对会员不可见
	_, err = svc.Get(ctx, created.ID, true)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)
	published, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, published)

	// 保留第二张，新增一张
	admin, err := svc.load(ctx, created.ID)
	require.NoError(t, err)
	keep := admin.Images[1].ImagePath
	updated, err := svc.Update(ctx, 1, created.ID, &dto.AnnouncementForm{
		Title:          "Holiday",
		IsPublished:    true,
		ExistingImages: []string{keep},
	}, []UploadFile{png("c.png")})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)
	assert.Len(t, updated.ImageURLs, 2)
	assert.Equal(t, keep, updated.ImagePath)

	got, err := svc.Get(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Holiday", got.Title)

	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, 1, created.ID), ErrAnnouncementNotFound)

	assert.Equal(t, []model.LogAction{
		model.ActionCreateAnnouncement,
		model.ActionUpdateAnnouncement,
		model.ActionDeleteAnnouncement,
	}, audit.actions())
}
