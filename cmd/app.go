package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/config"
	"line_price_portal/internal/controller"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
	"line_price_portal/internal/router"
	"line_price_portal/internal/service"
	"line_price_portal/pkg/database"
	"line_price_portal/pkg/line"
	"line_price_portal/pkg/telegram"
)

// ==================== 初始化函数 ====================

// loadConfig 读取配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootFlags[configFlag].GetString())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg)
	return cfg, nil
}

// setupLogger 开发环境输出彩色文本，生产环境输出 JSON
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLvl)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogJSON || cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// openDatabase 连接数据库
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	opts := database.DefaultOptions()
	opts.LogLevel = cfg.DBLogLevel
	return database.Open(cfg.DatabaseURL, opts)
}

// newMigrator 分区表 user_logs 之外的表走 AutoMigrate
func newMigrator(db *gorm.DB, cfg *config.Config) (*database.Migrator, error) {
	return database.NewMigrator(db, database.MigrateOptions{
		Models:            model.AutoMigrateModels(),
		PartitionedModels: []interface{}{&model.UserLog{}},
		FutureMonths:      cfg.PartitionFutureMonth,
	})
}

// openRedis REDIS_URL 为空时返回 nil
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info().Msg("redis connected")
	return rdb, nil
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Bus         *service.RedisPermissionBus
}

// Repositories 仓库集合
type Repositories struct {
	Access       *repository.AccessUnitOfWork
	UserLogs     repository.UserLogRepository
	Roles        repository.RolePermissionRepository
	Announcement repository.AnnouncementRepository
	Push         repository.PushSubscriptionRepository
	Stats        repository.StatsRepository
}

// Services 服务集合
type Services struct {
	Audit         *service.AuditService
	Permissions   *service.PermissionRegistry
	Grants        *service.GrantApplier
	Notify        *service.NotifyService
	Storage       *service.StorageService
	Auth          *service.AuthService
	User          *service.UserService
	AccessRequest *service.AccessRequestService
	Branch        *service.BranchService
	PriceGroup    *service.PriceGroupService
	Announcement  *service.AnnouncementService
	Analytics     *service.AnalyticsService
	Push          *service.PushService
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Dependencies, error) {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Issuer:          cfg.JWTIssuer,
	})
	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	// -------- Repo 层 --------
	repos := &Repositories{
		Access:       repository.NewAccessUnitOfWork(db),
		UserLogs:     repository.NewUserLogRepository(db),
		Roles:        repository.NewRolePermissionRepository(db),
		Announcement: repository.NewAnnouncementRepository(db),
		Push:         repository.NewPushSubscriptionRepository(db),
		Stats:        repository.NewStatsRepository(db),
	}

	// -------- 基础服务 --------
	storage, err := service.NewStorageService(service.StorageConfig{
		Provider:  cfg.StorageProvider,
		Bucket:    cfg.AWSBucket,
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		CDNDomain: cfg.AWSCDNDomain,
		BasePath:  cfg.UploadDir,
		PublicURL: cfg.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	lineClient := line.NewClient(line.Config{
		ChannelAccessToken: cfg.LineChannelAccessToken,
		BaseURL:            cfg.LineAPIBaseURL,
	})
	telegramClient := telegram.NewClient(telegram.Config{
		BotToken: cfg.TelegramBotToken,
		BaseURL:  cfg.TelegramAPIBaseURL,
	})

	var bus *service.RedisPermissionBus
	var permissionBus service.PermissionBus
	var summaryCache service.SummaryCache
	if rdb != nil {
		bus = service.NewRedisPermissionBus(rdb)
		permissionBus = bus
		summaryCache = service.NewRedisSummaryCache(rdb)
	}

	audit := service.NewAuditService(repos.UserLogs)
	grants := service.NewGrantApplier()
	notify := service.NewNotifyService(lineClient, telegramClient)
	permissions := service.NewPermissionRegistry(
		repos.Roles,
		service.NewPermissionCache(cfg.PermissionCacheTTL, nil),
		audit,
		permissionBus,
	)

	// -------- 业务服务 --------
	services := &Services{
		Audit:         audit,
		Permissions:   permissions,
		Grants:        grants,
		Notify:        notify,
		Storage:       storage,
		Auth:          service.NewAuthService(repos.Access.Users, lineClient, audit),
		User:          service.NewUserService(repos.Access, grants, permissions, audit),
		AccessRequest: service.NewAccessRequestService(repos.Access, grants, audit, notify),
		Branch:        service.NewBranchService(repos.Access.Branches, repos.Access.Grants, audit),
		PriceGroup:    service.NewPriceGroupService(repos.Access, storage, notify, audit),
		Announcement:  service.NewAnnouncementService(repos.Announcement, storage, audit),
		Analytics:     service.NewAnalyticsService(repos.Stats, summaryCache, notify),
		Push:          service.NewPushService(repos.Push),
	}

	return &Dependencies{
		DB:          db,
		Redis:       rdb,
		Repos:       repos,
		Services:    services,
		Controllers: initControllers(services, db, rdb),
		Bus:         bus,
	}, nil
}

// initControllers 初始化所有控制器
func initControllers(svc *Services, db *gorm.DB, rdb *redis.Client) *router.Controllers {
	return &router.Controllers{
		Auth:          controller.NewAuthController(svc.Auth, svc.User, svc.Permissions),
		AccessRequest: controller.NewAccessRequestController(svc.AccessRequest),
		Role:          controller.NewRoleController(svc.Permissions),
		Branch:        controller.NewBranchController(svc.Branch),
		PriceGroup:    controller.NewPriceGroupController(svc.PriceGroup),
		User:          controller.NewUserController(svc.User),
		Announcement:  controller.NewAnnouncementController(svc.Announcement),
		Analytics:     controller.NewAnalyticsController(svc.Analytics, svc.Audit),
		Push:          controller.NewPushController(svc.Push),
		Health:        controller.NewHealthController(db, rdb),
	}
}

// routerDeps 中间件依赖
func routerDeps(cfg *config.Config, deps *Dependencies) router.Deps {
	rd := router.Deps{
		Permissions:    deps.Services.Permissions,
		Users:          deps.Repos.Access.Users,
		Limiter:        middleware.NewCooldownLimiter(),
		SubmitInterval: cfg.SubmitRateLimit,
		EnableSwagger:  !cfg.IsProduction(),
	}
	if local, ok := deps.Services.Storage.GetProvider().(*service.LocalStorage); ok {
		rd.LocalFilesRoot = local.Root()
	}
	return rd
}
