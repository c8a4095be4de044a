package controller

import (
	"github.com/gin-gonic/gin"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/model"
	"line_price_portal/internal/service"
)

// ==================== AuthController 认证 ====================

// AuthController 登录、Token、当前用户
type AuthController struct {
	authService *service.AuthService
	userService *service.UserService
	registry    *service.PermissionRegistry
}

// NewAuthController 创建认证控制器
func NewAuthController(authService *service.AuthService, userService *service.UserService, registry *service.PermissionRegistry) *AuthController {
	return &AuthController{authService: authService, userService: userService, registry: registry}
}

// LineLogin LINE 登录
// @Summary LINE LIFF 登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LineLoginRequest true "LIFF 资料与 access token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/line [post]
func (c *AuthController) LineLogin(ctx *gin.Context) {
	var req dto.LineLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	resp, err := c.authService.LoginWithLine(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "login successful", resp)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} map[string]interface{}
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	resp, err := c.authService.RefreshToken(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "token refreshed", resp)
}

// Logout 登出
// @Summary 登出
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	c.authService.Logout(ctx.Request.Context(), middleware.GetUserID(ctx))
	respondOK(ctx, "logged out", nil)
}

// Me 当前用户资料
// @Summary 当前用户资料
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	info, err := c.userService.GetProfile(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, "ok", info)
}

// MyPermissions 当前用户的生效权限
// @Summary 当前用户权限
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MyPermissionsResponse
// @Router /permissions/me [get]
func (c *AuthController) MyPermissions(ctx *gin.Context) {
	role := middleware.GetUserRole(ctx)
	perms := c.registry.GetPermissions(ctx.Request.Context(), role)
	respondOK(ctx, "ok", dto.MyPermissionsResponse{
		Role:        string(role),
		Permissions: permissionStrings(perms),
	})
}

func permissionStrings(perms []model.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
