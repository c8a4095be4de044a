package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

const announcementDir = "announcements"

// AnnouncementService 公告
type AnnouncementService struct {
	repo    repository.AnnouncementRepository
	storage *StorageService
	audit   AuditLogger
}

// NewAnnouncementService 创建公告服务
func NewAnnouncementService(repo repository.AnnouncementRepository, storage *StorageService, audit AuditLogger) *AnnouncementService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &AnnouncementService{repo: repo, storage: storage, audit: audit}
}

// List 公告列表，publishedOnly 用于会员端
func (s *AnnouncementService) List(ctx context.Context, publishedOnly bool) ([]*dto.AnnouncementInfo, error) {
	list, err := s.repo.List(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AnnouncementInfo, len(list))
	for i := range list {
		out[i] = toAnnouncementInfo(&list[i], s.storage)
	}
	return out, nil
}

// Get 公告详情，未发布的公告对会员不可见
func (s *AnnouncementService) Get(ctx context.Context, id int64, publishedOnly bool) (*dto.AnnouncementInfo, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if publishedOnly && !a.IsPublished {
		return nil, ErrAnnouncementNotFound
	}
	return toAnnouncementInfo(a, s.storage), nil
}

// Create 创建公告并保存图片，第一张图写入 image_path
func (s *AnnouncementService) Create(ctx context.Context, actorID int64, form *dto.AnnouncementForm, files []UploadFile) (*dto.AnnouncementInfo, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	paths, err := s.saveAll(ctx, files)
	if err != nil {
		return nil, err
	}

	a := &model.Announcement{
		Title:       title,
		Body:        form.Body,
		IsPublished: form.IsPublished,
		CreatedBy:   optionalID(actorID),
	}
	if len(paths) > 0 {
		a.ImagePath = paths[0]
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.removeAll(ctx, paths)
		return nil, err
	}
	for i, p := range paths {
		if err := s.repo.AddImage(ctx, &model.AnnouncementImage{AnnouncementID: a.ID, ImagePath: p, SortOrder: i}); err != nil {
			return nil, err
		}
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionCreateAnnouncement,
		EntityType: model.EntityAnnouncement,
		EntityID:   strconv.FormatInt(a.ID, 10),
		Details:    map[string]interface{}{"title": title, "images": len(paths)},
	})
	return s.Get(ctx, a.ID, false)
}

// Update 更新公告
// 保留 existing_images 中列出的图片，其余删除，新上传的追加在后面
func (s *AnnouncementService) Update(ctx context.Context, actorID, id int64, form *dto.AnnouncementForm, files []UploadFile) (*dto.AnnouncementInfo, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(form.ExistingImages))
	for _, p := range form.ExistingImages {
		keep[p] = true
	}

	var kept []string
	var removed []string
	for _, img := range a.Images {
		if keep[img.ImagePath] {
			kept = append(kept, img.ImagePath)
			continue
		}
		if err := s.repo.DeleteImage(ctx, img.ID); err != nil {
			return nil, err
		}
		removed = append(removed, img.ImagePath)
	}
	s.removeAll(ctx, removed)

	added, err := s.saveAll(ctx, files)
	if err != nil {
		return nil, err
	}
	for i, p := range added {
		img := &model.AnnouncementImage{AnnouncementID: id, ImagePath: p, SortOrder: len(kept) + i}
		if err := s.repo.AddImage(ctx, img); err != nil {
			return nil, err
		}
	}

	all := append(kept, added...)
	first := ""
	if len(all) > 0 {
		first = all[0]
	}
	fields := map[string]interface{}{
		"title":        title,
		"body":         form.Body,
		"is_published": form.IsPublished,
		"image_path":   first,
	}
	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionUpdateAnnouncement,
		EntityType: model.EntityAnnouncement,
		EntityID:   strconv.FormatInt(id, 10),
		Details: map[string]interface{}{
			"title":          title,
			"removed_images": len(removed),
			"added_images":   len(added),
		},
	})
	return s.Get(ctx, id, false)
}

// Delete 删除公告及图片文件
func (s *AnnouncementService) Delete(ctx context.Context, actorID, id int64) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	paths := make([]string, 0, len(a.Images)+1)
	for _, img := range a.Images {
		paths = append(paths, img.ImagePath)
	}
	if len(a.Images) == 0 && a.ImagePath != "" {
		paths = append(paths, a.ImagePath)
	}
	s.removeAll(ctx, paths)

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionDeleteAnnouncement,
		EntityType: model.EntityAnnouncement,
		EntityID:   strconv.FormatInt(id, 10),
		Details:    map[string]interface{}{"title": a.Title},
	})
	return nil
}

// ==================== 辅助方法 ====================

func (s *AnnouncementService) load(ctx context.Context, id int64) (*model.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAnnouncementNotFound
	}
	return a, nil
}

// saveAll 保存全部图片，任一失败则删除已保存的
func (s *AnnouncementService) saveAll(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.storage == nil {
		return nil, apperr.Store(fmt.Errorf("storage not configured"))
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		stored, err := s.storage.SaveImage(ctx, announcementDir, f)
		if err != nil {
			s.removeAll(ctx, paths)
			if apperr.KindOf(err) == apperr.KindValidation {
				return nil, err
			}
			return nil, apperr.Store(err)
		}
		paths = append(paths, stored.Path)
	}
	return paths, nil
}

func (s *AnnouncementService) removeAll(ctx context.Context, paths []string) {
	if s.storage == nil {
		return
	}
	for _, p := range paths {
		if err := s.storage.Remove(ctx, p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("remove announcement image failed")
		}
	}
}
