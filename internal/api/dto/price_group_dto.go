package dto

import "time"

// CreatePriceGroupRequest 创建价格组
type CreatePriceGroupRequest struct {
	Name           string `json:"name" binding:"required,max=255"`
	Description    string `json:"description"`
	BranchID       *int64 `json:"branch_id" binding:"omitempty,gt=0"`
	TelegramChatID string `json:"telegram_chat_id" binding:"max=100"`
	LineGroupID    string `json:"line_group_id" binding:"max=100"`
	IsActive       *bool  `json:"is_active"`
}

// UpdatePriceGroupRequest 更新价格组
type UpdatePriceGroupRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description    *string `json:"description"`
	BranchID       *int64  `json:"branch_id" binding:"omitempty,gte=0"` // 0 表示取消关联
	TelegramChatID *string `json:"telegram_chat_id" binding:"omitempty,max=100"`
	LineGroupID    *string `json:"line_group_id" binding:"omitempty,max=100"`
	SortOrder      *int    `json:"sort_order" binding:"omitempty,min=0"`
	IsActive       *bool   `json:"is_active"`
}

// PriceGroupListRequest 价格组列表
type PriceGroupListRequest struct {
	BranchID   *int64 `form:"branch_id"`
	ActiveOnly bool   `form:"active_only"`
}

// UploadImageOptions 上传选项（multipart 表单字段）
type UploadImageOptions struct {
	SendTelegram bool `form:"send_to_telegram"`
	SendLine     bool `form:"send_to_line"`
	IsFirstImage bool `form:"is_first_image"`
}

// PriceGroupImageInfo 图片信息
type PriceGroupImageInfo struct {
	ID           int64     `json:"id"`
	PriceGroupID int64     `json:"price_group_id"`
	FilePath     string    `json:"file_path"`
	URL          string    `json:"url"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UploadedBy   int64     `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
