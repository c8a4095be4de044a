package dto

import "time"

// UserLogListRequest 审计日志查询
type UserLogListRequest struct {
	UserID   *int64     `form:"user_id"`
	Action   string     `form:"action"`
	Since    *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until    *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int        `form:"page,default=1" binding:"min=1"`
	PageSize int        `form:"page_size,default=50" binding:"min=1,max=200"`
}
