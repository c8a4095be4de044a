package service

import (
	"time"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/model"
)

// ==================== Model -> DTO ====================

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Image:       user.Image,
		Role:        string(user.Role),
		IsActive:    user.IsActive,
		ShopName:    user.ShopName,
		Phone:       user.Phone,
		Address:     user.Address,
		BankInfo:    user.BankInfo,
		Note:        user.Note,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// ToAccessRequestInfo 申请转换为 DTO
func ToAccessRequestInfo(req *model.AccessRequest) *dto.AccessRequestInfo {
	info := &dto.AccessRequestInfo{
		ID:           req.ID,
		UserID:       req.UserID,
		ShopName:     req.ShopName,
		Phone:        req.Phone,
		Note:         req.Note,
		BranchID:     req.BranchID,
		Status:       string(req.Status),
		RejectReason: req.RejectReason,
		ReviewedBy:   req.ReviewedBy,
		ReviewedAt:   req.ReviewedAt,
		CreatedAt:    req.CreatedAt,
	}
	if req.User != nil {
		info.UserName = req.User.Name
		info.UserImage = req.User.Image
	}
	return info
}

func toImageInfo(img *model.PriceGroupImage, storage *StorageService) *dto.PriceGroupImageInfo {
	info := &dto.PriceGroupImageInfo{
		ID:           img.ID,
		PriceGroupID: img.PriceGroupID,
		FilePath:     img.FilePath,
		FileName:     img.FileName,
		FileSize:     img.FileSize,
		MimeType:     img.MimeType,
		UploadedBy:   img.UploadedBy,
		CreatedAt:    img.CreatedAt,
	}
	if storage != nil {
		info.URL = storage.URL(img.FilePath)
	}
	return info
}

func toAnnouncementInfo(a *model.Announcement, storage *StorageService) *dto.AnnouncementInfo {
	info := &dto.AnnouncementInfo{
		ID:          a.ID,
		Title:       a.Title,
		Body:        a.Body,
		ImagePath:   a.ImagePath,
		IsPublished: a.IsPublished,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if storage == nil {
		return info
	}
	if a.ImagePath != "" {
		info.ImageURL = storage.URL(a.ImagePath)
	}
	for _, img := range a.Images {
		info.ImageURLs = append(info.ImageURLs, storage.URL(img.ImagePath))
	}
	return info
}

func toGroupGrants(rows []model.UserGroupAccess, groups map[int64]string, now time.Time) []dto.UserGroupGrant {
	out := make([]dto.UserGroupGrant, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, dto.UserGroupGrant{
			PriceGroupID: r.PriceGroupID,
			Name:         groups[r.PriceGroupID],
			ExpiresAt:    r.ExpiresAt,
			Expired:      r.IsExpired(now),
			GrantedBy:    r.GrantedBy,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out
}
