package model

// Announcement 公告
type Announcement struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Body        string `gorm:"type:text" json:"body"`
	ImagePath   string `gorm:"size:500" json:"image_path,omitempty"` // 首图
	IsPublished bool   `gorm:"not null;index" json:"is_published"`
	CreatedBy   *int64 `json:"created_by,omitempty"`

	Images []AnnouncementImage `gorm:"foreignKey:AnnouncementID" json:"images,omitempty"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// AnnouncementImage 公告图片
type AnnouncementImage struct {
	BaseModel
	AnnouncementID int64  `gorm:"not null;index" json:"announcement_id"`
	ImagePath      string `gorm:"size:500;not null" json:"image_path"`
	SortOrder      int    `gorm:"not null;default:0" json:"sort_order"`
}

func (AnnouncementImage) TableName() string {
	return "announcement_images"
}
