package dto

// CreateBranchRequest 创建分店
type CreateBranchRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Code        string `json:"code" binding:"required,max=50"`
	Description string `json:"description"`
	Address     string `json:"address"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateBranchRequest 更新分店，只更新传入的字段
type UpdateBranchRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Code        *string `json:"code" binding:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	SortOrder   *int    `json:"sort_order" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}
