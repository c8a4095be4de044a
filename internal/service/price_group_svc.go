package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/apperr"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// PriceImageNotifier 图片上传后的群通知
type PriceImageNotifier interface {
	PriceImageUploaded(ctx context.Context, notice PriceImageNotice)
}

// PriceGroupService 价格组与图片
type PriceGroupService struct {
	uow      *repository.AccessUnitOfWork
	storage  *StorageService
	notifier PriceImageNotifier
	audit    AuditLogger
	now      func() time.Time
}

// NewPriceGroupService 创建价格组服务，notifier 可为 nil
func NewPriceGroupService(uow *repository.AccessUnitOfWork, storage *StorageService, notifier PriceImageNotifier, audit AuditLogger) *PriceGroupService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &PriceGroupService{
		uow:      uow,
		storage:  storage,
		notifier: notifier,
		audit:    audit,
		now:      time.Now,
	}
}

// ==================== 价格组 ====================

// List 后台价格组列表
func (s *PriceGroupService) List(ctx context.Context, req *dto.PriceGroupListRequest) ([]model.PriceGroup, error) {
	return s.uow.PriceGroups.List(ctx, repository.PriceGroupFilter{
		BranchID:   req.BranchID,
		ActiveOnly: req.ActiveOnly,
	})
}

// Get 价格组详情
func (s *PriceGroupService) Get(ctx context.Context, id int64) (*model.PriceGroup, error) {
	group, err := s.uow.PriceGroups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrPriceGroupNotFound
	}
	return group, nil
}

// Create 创建价格组，排在最后
func (s *PriceGroupService) Create(ctx context.Context, actorID int64, req *dto.CreatePriceGroupRequest) (*model.PriceGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := s.checkBranch(ctx, req.BranchID); err != nil {
		return nil, err
	}

	maxOrder, err := s.uow.PriceGroups.MaxSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	group := &model.PriceGroup{
		Name:           name,
		Description:    req.Description,
		BranchID:       req.BranchID,
		TelegramChatID: strings.TrimSpace(req.TelegramChatID),
		LineGroupID:    strings.TrimSpace(req.LineGroupID),
		SortOrder:      maxOrder + 1,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}
	if err := s.uow.PriceGroups.Create(ctx, group); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionCreateGroup,
		EntityType: model.EntityPriceGroup,
		EntityID:   strconv.FormatInt(group.ID, 10),
		Details:    map[string]interface{}{"name": name},
	})
	return group, nil
}

// Update 更新价格组，branch_id=0 表示取消分店关联
func (s *PriceGroupService) Update(ctx context.Context, actorID, id int64, req *dto.UpdatePriceGroupRequest) (*model.PriceGroup, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.BranchID != nil {
		if *req.BranchID == 0 {
			fields["branch_id"] = nil
		} else {
			if err := s.checkBranch(ctx, req.BranchID); err != nil {
				return nil, err
			}
			fields["branch_id"] = *req.BranchID
		}
	}
	if req.TelegramChatID != nil {
		fields["telegram_chat_id"] = strings.TrimSpace(*req.TelegramChatID)
	}
	if req.LineGroupID != nil {
		fields["line_group_id"] = strings.TrimSpace(*req.LineGroupID)
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return group, nil
	}

	if err := s.uow.PriceGroups.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionUpdateGroup,
		EntityType: model.EntityPriceGroup,
		EntityID:   strconv.FormatInt(id, 10),
		Details:    fields,
	})
	return s.Get(ctx, id)
}

// Delete 删除价格组，同时删除授权和图片
func (s *PriceGroupService) Delete(ctx context.Context, actorID, id int64) error {
	var images []model.PriceGroupImage
	var group *model.PriceGroup
	err := s.uow.Transaction(ctx, func(tx *repository.AccessUnitOfWork) error {
		var err error
		if group, err = tx.PriceGroups.GetByID(ctx, id); err != nil {
			return err
		}
		if group == nil {
			return ErrPriceGroupNotFound
		}
		if images, err = tx.PriceGroups.ListImages(ctx, id); err != nil {
			return err
		}
		if err := tx.Grants.DeleteGroupAccessByGroup(ctx, id); err != nil {
			return err
		}
		if err := tx.PriceGroups.DeleteImagesByGroup(ctx, id); err != nil {
			return err
		}
		return tx.PriceGroups.Delete(ctx, id)
	})
	if err != nil {
		return repository.TranslateError(err)
	}

	// 文件在提交后删除，失败只记日志
	for _, img := range images {
		s.removeFile(ctx, img.FilePath)
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionDeleteGroup,
		EntityType: model.EntityPriceGroup,
		EntityID:   strconv.FormatInt(id, 10),
		Details:    map[string]interface{}{"name": group.Name, "images": len(images)},
	})
	return nil
}

func (s *PriceGroupService) checkBranch(ctx context.Context, branchID *int64) error {
	if branchID == nil {
		return nil
	}
	n, err := s.uow.Branches.CountByIDs(ctx, []int64{*branchID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBranchNotFound
	}
	return nil
}

// ==================== 图片 ====================

// ListImages 价格组图片，最新的在前
func (s *PriceGroupService) ListImages(ctx context.Context, groupID int64) ([]*dto.PriceGroupImageInfo, error) {
	if _, err := s.Get(ctx, groupID); err != nil {
		return nil, err
	}
	images, err := s.uow.PriceGroups.ListImages(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PriceGroupImageInfo, len(images))
	for i := range images {
		out[i] = toImageInfo(&images[i], s.storage)
	}
	return out, nil
}

// UploadImage 上传价格图片并按选项通知
func (s *PriceGroupService) UploadImage(ctx context.Context, actorID, groupID int64, file UploadFile, opts dto.UploadImageOptions) (*dto.PriceGroupImageInfo, error) {
	if s.storage == nil {
		return nil, apperr.Store(fmt.Errorf("storage not configured"))
	}
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	stored, err := s.storage.SaveImage(ctx, fmt.Sprintf("price-groups/%d", groupID), file)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			return nil, err
		}
		return nil, apperr.Store(err)
	}

	img := &model.PriceGroupImage{
		PriceGroupID: groupID,
		FilePath:     stored.Path,
		FileName:     stored.FileName,
		FileSize:     stored.Size,
		MimeType:     stored.MimeType,
		UploadedBy:   actorID,
	}
	if err := s.uow.PriceGroups.CreateImage(ctx, img); err != nil {
		s.removeFile(ctx, stored.Path)
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionUploadImage,
		EntityType: model.EntityImage,
		EntityID:   strconv.FormatInt(img.ID, 10),
		Details: map[string]interface{}{
			"price_group_id": groupID,
			"file_name":      stored.FileName,
			"file_size":      stored.Size,
		},
	})

	if s.notifier != nil && (opts.SendLine || opts.SendTelegram) {
		s.notifier.PriceImageUploaded(ctx, PriceImageNotice{
			Group:        group,
			Photo:        file.Data,
			FileName:     stored.FileName,
			SendLine:     opts.SendLine,
			SendTelegram: opts.SendTelegram,
			FirstImage:   opts.IsFirstImage,
		})
	}

	return toImageInfo(img, s.storage), nil
}

// DeleteImage 删除图片记录和文件
func (s *PriceGroupService) DeleteImage(ctx context.Context, actorID, imageID int64) error {
	img, err := s.uow.PriceGroups.GetImage(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil {
		return ErrImageNotFound
	}
	if err := s.uow.PriceGroups.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	s.removeFile(ctx, img.FilePath)

	s.audit.Log(ctx, AuditEntry{
		UserID:     actorID,
		Action:     model.ActionDeleteImage,
		EntityType: model.EntityImage,
		EntityID:   strconv.FormatInt(imageID, 10),
		Details: map[string]interface{}{
			"price_group_id": img.PriceGroupID,
			"file_name":      img.FileName,
		},
	})
	return nil
}

func (s *PriceGroupService) removeFile(ctx context.Context, p string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Remove(ctx, p); err != nil {
		log.Warn().Err(err).Str("path", p).Msg("remove stored file failed")
	}
}

// ==================== 会员视图 ====================

// seesAllGroups admin/operator 可查看全部启用的价格组
func seesAllGroups(role model.Role) bool {
	return role == model.RoleAdmin || role == model.RoleOperator
}

// ListForMember 当前用户可查看的价格组
func (s *PriceGroupService) ListForMember(ctx context.Context, userID int64, role model.Role) ([]model.PriceGroup, error) {
	if seesAllGroups(role) {
		return s.uow.PriceGroups.List(ctx, repository.PriceGroupFilter{ActiveOnly: true})
	}
	return s.uow.PriceGroups.ListGrantedTo(ctx, userID, s.now())
}

// MemberImages 当前用户查看某价格组的图片
// 无权限与不存在同样返回 NotFound
func (s *PriceGroupService) MemberImages(ctx context.Context, userID int64, role model.Role, groupID int64) ([]*dto.PriceGroupImageInfo, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, ErrPriceGroupNotFound
	}
	if !seesAllGroups(role) {
		ok, err := s.uow.Grants.HasGroupAccess(ctx, userID, groupID, s.now())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPriceGroupNotFound
		}
	}
	return s.ListImages(ctx, groupID)
}
