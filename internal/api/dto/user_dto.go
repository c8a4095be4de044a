package dto

import "time"

// ==================== 登录 ====================

// LineLoginRequest LIFF 登录请求
type LineLoginRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name" binding:"required,max=255"`
	PictureURL  string `json:"picture_url" binding:"omitempty,url"`
	Email       string `json:"email" binding:"omitempty,email"`
	AccessToken string `json:"access_token" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsNewUser    bool      `json:"is_new_user"`
	User         *UserInfo `json:"user"`
}

// ==================== Token 刷新 ====================

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 刷新 Token 响应
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ==================== 用户信息 ====================

// UserInfo 用户信息
type UserInfo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Image       string     `json:"image,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	ShopName    string     `json:"shop_name"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address,omitempty"`
	BankInfo    string     `json:"bank_info,omitempty"`
	Note        string     `json:"note,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserGroupGrant 用户的价格组授权
type UserGroupGrant struct {
	PriceGroupID int64      `json:"price_group_id"`
	Name         string     `json:"name"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Expired      bool       `json:"expired"`
	GrantedBy    *int64     `json:"granted_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UserDetail 用户详情（含授权）
type UserDetail struct {
	*UserInfo
	Groups   []UserGroupGrant `json:"groups"`
	Branches []int64          `json:"branch_ids"`
}

// ==================== 用户管理（管理员） ====================

// UpdateUserRequest 更新用户请求，只更新传入的字段
type UpdateUserRequest struct {
	ShopName *string `json:"shop_name" binding:"omitempty,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Address  *string `json:"address"`
	BankInfo *string `json:"bank_info"`
	Note     *string `json:"note"`
	Role     *string `json:"role" binding:"omitempty,role"`
	IsActive *bool   `json:"is_active"`
}

// GrantGroupsRequest 添加价格组授权
type GrantGroupsRequest struct {
	PriceGroupIDs []int64    `json:"price_group_ids" binding:"required,min=1,dive,gt=0"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// BranchIDsRequest 分店分配
type BranchIDsRequest struct {
	BranchIDs []int64 `json:"branch_ids" binding:"required,min=1,dive,gt=0"`
}

// ==================== 用户列表 ====================

// UserListRequest 用户列表请求
type UserListRequest struct {
	Keyword  string `form:"keyword"`
	Role     string `form:"role" binding:"omitempty,role"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=200"`
}

// UserListResponse 用户列表响应
type UserListResponse struct {
	List  []*UserInfo `json:"list"`
	Total int64       `json:"total"`
}
