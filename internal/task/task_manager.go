package task

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ==================== TaskManager 定时任务管理器 ====================

// TaskManager 统一启动/停止后台任务
type TaskManager struct {
	grantTask     *GrantExpiryTask
	partitionTask *PartitionTask
}

// TaskManagerDeps 任务依赖，为 nil 的任务不启用
type TaskManagerDeps struct {
	Grants     GrantPurger
	Partitions PartitionMaintainer
}

// TaskManagerConfig 任务配置
type TaskManagerConfig struct {
	GrantExpiryEnabled bool
	GrantExpirySpec    string

	PartitionEnabled      bool
	PartitionSpec         string
	PartitionFutureMonths int
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		GrantExpiryEnabled:    true,
		GrantExpirySpec:       DefaultGrantExpirySpec,
		PartitionEnabled:      true,
		PartitionSpec:         DefaultPartitionSpec,
		PartitionFutureMonths: 3,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}
	if cfg.GrantExpiryEnabled && deps.Grants != nil {
		tm.grantTask = NewGrantExpiryTask(deps.Grants, cfg.GrantExpirySpec)
	}
	if cfg.PartitionEnabled && deps.Partitions != nil {
		tm.partitionTask = NewPartitionTask(deps.Partitions, cfg.PartitionSpec, cfg.PartitionFutureMonths)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务，任一任务调度配置无效即返回错误
func (tm *TaskManager) Start() error {
	if tm.grantTask != nil {
		if err := tm.grantTask.Start(); err != nil {
			return err
		}
	}
	if tm.partitionTask != nil {
		if err := tm.partitionTask.Start(); err != nil {
			tm.Stop()
			return err
		}
	}
	log.Info().Interface("tasks", tm.Status()).Msg("background tasks started")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.grantTask != nil {
		tm.grantTask.Stop()
	}
	if tm.partitionTask != nil {
		tm.partitionTask.Stop()
	}
}

// ==================== 手动触发接口 ====================

// TriggerGrantExpiry 立即清理过期授权
func (tm *TaskManager) TriggerGrantExpiry(ctx context.Context) (int64, error) {
	if tm.grantTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.grantTask.RunOnce(ctx)
}

// TriggerPartitionMaintenance 立即执行分区维护
func (tm *TaskManager) TriggerPartitionMaintenance(ctx context.Context) (int, error) {
	if tm.partitionTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.partitionTask.RunOnce(ctx), nil
}

// ==================== 状态查询 ====================

// Status 各任务是否启用
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"grant_expiry": tm.grantTask != nil,
		"partition":    tm.partitionTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
