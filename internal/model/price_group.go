package model

// PriceGroup 价格组（一组价目表图片）
type PriceGroup struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	BranchID    *int64 `gorm:"index" json:"branch_id,omitempty"`

	// 通知渠道
	TelegramChatID string `gorm:"size:100" json:"telegram_chat_id"`
	LineGroupID    string `gorm:"size:100" json:"line_group_id"`

	SortOrder int  `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool `gorm:"not null" json:"is_active"`
}

func (PriceGroup) TableName() string {
	return "price_groups"
}

// PriceGroupImage 价格组图片
type PriceGroupImage struct {
	BaseModel
	PriceGroupID int64  `gorm:"not null;index" json:"price_group_id"`
	FilePath     string `gorm:"size:500;not null" json:"file_path"` // 存储路径，如 /price-groups/3/xxx.jpg
	FileName     string `gorm:"size:255" json:"file_name"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `gorm:"size:50" json:"mime_type"`
	UploadedBy   int64  `gorm:"index" json:"uploaded_by"`
}

func (PriceGroupImage) TableName() string {
	return "price_group_images"
}
