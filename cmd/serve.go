package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"line_price_portal/internal/router"
	"line_price_portal/internal/task"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(parent), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 数据库与迁移
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	migrator, err := newMigrator(db, cfg)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		return err
	}

	// 2. Redis（可选）
	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 3. 依赖
	deps, err := initDependencies(cfg, db, rdb)
	if err != nil {
		return err
	}
	if deps.Bus != nil {
		go deps.Bus.Subscribe(ctx, deps.Services.Permissions.Invalidate)
	}

	// 4. 定时任务
	taskDeps := &task.TaskManagerDeps{Grants: deps.Repos.Access.Grants}
	if db.Dialector.Name() == "postgres" {
		taskDeps.Partitions = migrator.Manager()
	}
	taskCfg := task.DefaultConfig()
	taskCfg.GrantExpirySpec = cfg.GrantExpiryCron
	taskCfg.PartitionFutureMonths = cfg.PartitionFutureMonth
	tasks := task.NewTaskManager(taskDeps, taskCfg)
	if err := tasks.Start(); err != nil {
		return err
	}
	defer tasks.Stop()

	// 5. HTTP 服务
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(deps.Controllers, routerDeps(cfg, deps)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return runServer(ctx, srv)
}

// runServer 启动服务，ctx 结束后优雅关闭
func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server exited")
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

