package dto

import "time"

// AnnouncementForm 公告表单（multipart），图片字段为 images
type AnnouncementForm struct {
	Title          string   `form:"title" binding:"required,max=255"`
	Body           string   `form:"body"`
	IsPublished    bool     `form:"is_published"`
	ExistingImages []string `form:"existing_images"` // 更新时保留的图片路径
}

// AnnouncementInfo 公告信息
type AnnouncementInfo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ImagePath   string    `json:"image_path,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
