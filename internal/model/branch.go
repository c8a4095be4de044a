package model

// Branch 分店
type Branch struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Code        string `gorm:"size:50;not null;uniqueIndex" json:"code"` // 大写
	Description string `gorm:"type:text" json:"description"`
	Address     string `gorm:"type:text" json:"address"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}

func (Branch) TableName() string {
	return "branches"
}
