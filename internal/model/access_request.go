package model

import "time"

// AccessRequestStatus 申请状态
type AccessRequestStatus string

const (
	AccessRequestPending  AccessRequestStatus = "pending"
	AccessRequestApproved AccessRequestStatus = "approved"
	AccessRequestRejected AccessRequestStatus = "rejected"
)

// IsTerminal 终态不可再变更
func (s AccessRequestStatus) IsTerminal() bool {
	return s == AccessRequestApproved || s == AccessRequestRejected
}

// AccessRequest 用户访问申请
// 每个用户同一时间最多一条 pending（部分唯一索引兜底）
type AccessRequest struct {
	BaseModel
	UserID   int64               `gorm:"not null;index;uniqueIndex:idx_access_requests_one_pending,where:status = 'pending'" json:"user_id"`
	ShopName string              `gorm:"size:255;not null" json:"shop_name"`
	Phone    string              `gorm:"size:50" json:"phone"`
	Note     string              `gorm:"type:text" json:"note"`
	BranchID *int64              `gorm:"index" json:"branch_id,omitempty"`
	Status   AccessRequestStatus `gorm:"size:20;not null;index" json:"status"`

	// 审核信息
	RejectReason *string    `gorm:"type:text" json:"reject_reason,omitempty"`
	ReviewedBy   *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AccessRequest) TableName() string {
	return "access_requests"
}
