package middleware

import (
	"context"
	"net/http"

	"line_price_portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PermissionChecker 权限判定
type PermissionChecker interface {
	HasPermission(ctx context.Context, role model.Role, permission model.Permission) bool
}

// RequirePermission 权限校验中间件，满足任意一个权限即放行
// 缺少权限按约定返回 401
func RequirePermission(checker PermissionChecker, perms ...model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		for _, p := range perms {
			if checker.HasPermission(c.Request.Context(), role, p) {
				c.Next()
				return
			}
		}

		log.Warn().
			Int64("user_id", GetUserID(c)).
			Str("role", string(role)).
			Str("path", c.FullPath()).
			Msg("permission denied")
		abortUnauthorized(c, "permission denied")
	}
}

// UserLoader 按 ID 读取用户
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// ActiveUser 校验当前用户仍然启用，并以数据库中的角色为准
// Token 里的角色可能已被管理员修改
func ActiveUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetByID(c.Request.Context(), GetUserID(c))
		if err != nil {
			log.Error().Err(err).Int64("user_id", GetUserID(c)).Msg("load current user failed")
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "internal server error", "data": nil})
			c.Abort()
			return
		}
		if user == nil || !user.IsActive {
			abortUnauthorized(c, "account is disabled")
			return
		}

		c.Set(ContextKeyRole, user.Role)
		c.Next()
	}
}
