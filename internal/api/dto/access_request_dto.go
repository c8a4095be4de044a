package dto

import "time"

// SubmitAccessRequest 提交访问申请
type SubmitAccessRequest struct {
	ShopName string `json:"shop_name" binding:"required,max=255"`
	Phone    string `json:"phone" binding:"required,max=50"`
	Note     string `json:"note"`
	BranchID *int64 `json:"branch_id" binding:"omitempty,gt=0"`
}

// ApproveRequest 通过申请
// price_group_ids 为空由服务层返回校验错误，保证先判断申请状态
type ApproveRequest struct {
	PriceGroupIDs []int64 `json:"price_group_ids" binding:"omitempty,dive,gt=0"`
	BranchIDs     []int64 `json:"branch_ids" binding:"omitempty,dive,gt=0"`
}

// RejectRequest 拒绝申请
type RejectRequest struct {
	Reason *string `json:"reason"`
}

// AccessRequestListRequest 申请列表
type AccessRequestListRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=200"`
}

// AccessRequestInfo 申请信息
type AccessRequestInfo struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	UserName     string     `json:"user_name,omitempty"`
	UserImage    string     `json:"user_image,omitempty"`
	ShopName     string     `json:"shop_name"`
	Phone        string     `json:"phone"`
	Note         string     `json:"note,omitempty"`
	BranchID     *int64     `json:"branch_id,omitempty"`
	Status       string     `json:"status"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	ReviewedBy   *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AccessRequestListResponse 申请列表响应
type AccessRequestListResponse struct {
	List  []*AccessRequestInfo `json:"list"`
	Total int64                `json:"total"`
}
