package router

import (
	"time"

	"line_price_portal/internal/controller"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/model"
	"line_price_portal/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "line_price_portal/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Auth          *controller.AuthController
	AccessRequest *controller.AccessRequestController
	Role          *controller.RoleController
	Branch        *controller.BranchController
	PriceGroup    *controller.PriceGroupController
	User          *controller.UserController
	Announcement  *controller.AnnouncementController
	Analytics     *controller.AnalyticsController
	Push          *controller.PushController
	Health        *controller.HealthController
}

// Deps 中间件依赖
type Deps struct {
	Permissions middleware.PermissionChecker
	Users       middleware.UserLoader
	Limiter     *middleware.CooldownLimiter
	// SubmitInterval 同一用户两次提交申请的最小间隔，0 表示不限
	SubmitInterval time.Duration
	// LocalFilesRoot 非空时挂载本地文件路由
	LocalFilesRoot string
	EnableSwagger  bool
}

// SetupRouter 创建 gin 引擎并注册全部路由
func SetupRouter(c *Controllers, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.CORS())

	// 访问 http://localhost:8080/swagger/index.html 即可查看
	if deps.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.GET("/healthz", c.Health.Check)

	if deps.LocalFilesRoot != "" {
		r.Static(service.LocalFilesRoute, deps.LocalFilesRoot)
	}

	if deps.Limiter == nil {
		deps.Limiter = middleware.NewCooldownLimiter()
	}

	perm := func(p ...model.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Permissions, p...)
	}

	api := r.Group("/api")
	{
		// 公开接口
		auth := api.Group("/auth")
		{
			auth.POST("/line", c.Auth.LineLogin)
			auth.POST("/refresh", c.Auth.RefreshToken)
		}
		api.GET("/branches", c.Branch.PublicList)

		// 登录后
		authed := api.Group("")
		authed.Use(middleware.JWTAuth(), middleware.ActiveUser(deps.Users), middleware.AuditContext())
		{
			authed.POST("/auth/logout", c.Auth.Logout)
			authed.GET("/auth/me", c.Auth.Me)
			authed.GET("/permissions/me", c.Auth.MyPermissions)

			requests := authed.Group("/access-requests")
			{
				requests.POST("", middleware.UserCooldown(deps.Limiter, "access_request", deps.SubmitInterval), c.AccessRequest.Submit)
				requests.GET("/mine", c.AccessRequest.Mine)
				requests.GET("", perm(model.PermApproveRequests), c.AccessRequest.List)
				requests.GET("/:id", perm(model.PermApproveRequests), c.AccessRequest.Get)
				requests.POST("/:id/approve", perm(model.PermApproveRequests), c.AccessRequest.Approve)
				requests.POST("/:id/reject", perm(model.PermApproveRequests), c.AccessRequest.Reject)
			}

			// 会员视图
			authed.GET("/price-groups", c.PriceGroup.MemberList)
			authed.GET("/price-groups/:id/images", c.PriceGroup.MemberImages)
			authed.GET("/announcements", c.Announcement.PublishedList)
			authed.GET("/announcements/:id", c.Announcement.PublishedGet)

			push := authed.Group("/push")
			{
				push.POST("/subscribe", c.Push.Subscribe)
				push.POST("/unsubscribe", c.Push.Unsubscribe)
			}

			registerAdmin(authed.Group("/admin"), c, perm)
		}
	}

	return r
}

// registerAdmin 后台路由，按权限点分组
func registerAdmin(admin *gin.RouterGroup, c *Controllers, perm func(...model.Permission) gin.HandlerFunc) {
	roles := admin.Group("/roles", perm(model.PermManageRoles))
	{
		roles.GET("", c.Role.List)
		roles.PUT("", c.Role.Update)
	}

	branches := admin.Group("/branches", perm(model.PermManageBranches))
	{
		branches.GET("", c.Branch.List)
		branches.POST("", c.Branch.Create)
		branches.PATCH("/:id", c.Branch.Update)
		branches.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), c.Branch.Delete)
	}

	groups := admin.Group("/price-groups")
	{
		groups.GET("", perm(model.PermManagePriceGroups), c.PriceGroup.List)
		groups.POST("", perm(model.PermManagePriceGroups), c.PriceGroup.Create)
		groups.GET("/:id", perm(model.PermManagePriceGroups), c.PriceGroup.Get)
		groups.PATCH("/:id", perm(model.PermManagePriceGroups), c.PriceGroup.Update)
		groups.DELETE("/:id", perm(model.PermManagePriceGroups), c.PriceGroup.Delete)
		groups.GET("/:id/images", perm(model.PermUploadImages), c.PriceGroup.ListImages)
		groups.POST("/:id/images", perm(model.PermUploadImages), c.PriceGroup.UploadImages)
	}
	admin.DELETE("/images/:id", perm(model.PermUploadImages), c.PriceGroup.DeleteImage)

	users := admin.Group("/users")
	{
		users.GET("", perm(model.PermManageUsers), c.User.List)
		users.GET("/:id", perm(model.PermManageUsers), c.User.Get)
		// 仅有 toggle_user_status 也可修改启用状态，其余字段由服务层校验
		users.PATCH("/:id", perm(model.PermManageUsers, model.PermToggleUserStatus), c.User.Update)
		users.DELETE("/:id", perm(model.PermManageUsers), c.User.Delete)
		users.POST("/:id/groups", perm(model.PermManageUsers), c.User.GrantGroups)
		users.DELETE("/:id/groups/:groupId", perm(model.PermManageUsers), c.User.RevokeGroup)
		users.POST("/:id/branches", perm(model.PermManageUsers), c.User.AssignBranches)
		users.DELETE("/:id/branches", perm(model.PermManageUsers), c.User.UnassignBranches)
	}

	analytics := admin.Group("", perm(model.PermViewAnalytics))
	{
		analytics.GET("/logs", c.Analytics.Logs)
		analytics.GET("/line-usage", c.Analytics.LineUsage)
		analytics.GET("/analytics", c.Analytics.Summary)
	}

	announcements := admin.Group("/announcements", perm(model.PermManageAnnouncements))
	{
		announcements.GET("", c.Announcement.List)
		announcements.POST("", c.Announcement.Create)
		announcements.GET("/:id", c.Announcement.Get)
		announcements.PATCH("/:id", c.Announcement.Update)
		announcements.DELETE("/:id", c.Announcement.Delete)
	}
}
