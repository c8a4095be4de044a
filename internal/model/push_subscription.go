package model

// PushSubscription Web Push 订阅
type PushSubscription struct {
	BaseModel
	UserID    int64  `gorm:"not null;index" json:"user_id"`
	Endpoint  string `gorm:"size:1000;not null;uniqueIndex" json:"endpoint"`
	P256dh    string `gorm:"size:255;not null" json:"p256dh"`
	Auth      string `gorm:"size:255;not null" json:"auth"`
	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
