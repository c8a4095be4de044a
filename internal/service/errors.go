package service

import "line_price_portal/internal/apperr"

// 业务错误，调用方用 errors.Is 判断
var (
	ErrPendingRequestExists  = apperr.Conflict("you already have a pending access request")
	ErrRequestNotFound       = apperr.NotFound("access request not found")
	ErrRequestAlreadyHandled = apperr.InvalidState("request already processed")
	ErrPriceGroupsRequired   = apperr.Validation("price_group_ids is required")
	ErrShopNameRequired      = apperr.Validation("shop_name is required")
	ErrPhoneRequired         = apperr.Validation("phone is required")

	ErrAdminPermissionsLocked = apperr.Validation("admin permissions cannot be modified")
	ErrUnknownRole            = apperr.Validation("invalid role")

	ErrUserNotFound         = apperr.NotFound("user not found")
	ErrCannotModifyAdmin    = apperr.Unauthorized("only admin can modify admin accounts")
	ErrCannotDeleteSelf     = apperr.Validation("cannot delete your own account")
	ErrToggleStatusDenied   = apperr.Unauthorized("permission denied: toggle_user_status")
	ErrManageUsersDenied    = apperr.Unauthorized("permission denied: manage_users")
	ErrGrantNotFound        = apperr.NotFound("grant not found")
	ErrUserDisabled         = apperr.Unauthorized("account is disabled")
	ErrInvalidLineToken     = apperr.Unauthorized("invalid LINE access token")
	ErrLineUserMismatch     = apperr.Unauthorized("user ID mismatch")
	ErrInvalidRefresh       = apperr.Unauthorized("refresh token invalid or expired")
	ErrBranchNotFound       = apperr.NotFound("branch not found")
	ErrBranchCodeExists     = apperr.Conflict("branch code already exists")
	ErrBranchInUse          = apperr.Conflict("branch still has assigned users")
	ErrPriceGroupNotFound   = apperr.NotFound("price group not found")
	ErrImageNotFound        = apperr.NotFound("image not found")
	ErrFileTooLarge         = apperr.Validation("file too large")
	ErrInvalidFileType      = apperr.Validation("invalid file type")
	ErrAnnouncementNotFound = apperr.NotFound("announcement not found")
	ErrTitleRequired        = apperr.Validation("title is required")
)
