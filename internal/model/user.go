package model

import "time"

// User LINE 登录用户
// 只做软删除：IsActive=false
type User struct {
	BaseModel
	// 身份
	Provider   string `gorm:"size:20;not null;uniqueIndex:idx_users_provider" json:"provider"`
	ProviderID string `gorm:"size:100;not null;uniqueIndex:idx_users_provider" json:"provider_id"`

	// LINE 资料（每次登录刷新）
	Name  string `gorm:"size:255" json:"name"`
	Email string `gorm:"size:255" json:"email,omitempty"`
	Image string `gorm:"size:500" json:"image,omitempty"`

	Role     Role `gorm:"size:20;not null;index" json:"role"`
	IsActive bool `gorm:"not null" json:"is_active"`

	// 店铺资料（申请时填写，管理员可修改）
	ShopName string `gorm:"size:255" json:"shop_name"`
	Phone    string `gorm:"size:50" json:"phone"`
	Address  string `gorm:"type:text" json:"address"`
	BankInfo string `gorm:"type:text" json:"bank_info"`
	Note     string `gorm:"type:text" json:"note"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// ProviderLine LINE 登录
const ProviderLine = "line"
