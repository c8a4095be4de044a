package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"line_price_portal/pkg/database"
)

// PartitionMaintainer 分区维护操作，由 database.PartitionManager 实现
type PartitionMaintainer interface {
	HealthCheck(ctx context.Context) error
	EnsureFuturePartitions(ctx context.Context, monthsAhead int) error
	CleanupExpiredPartitions(ctx context.Context) (int, error)
	GetAllStats(ctx context.Context) ([]database.TableStats, error)
}

var _ PartitionMaintainer = (*database.PartitionManager)(nil)

// DefaultPartitionSpec 每天 03:00
const DefaultPartitionSpec = "0 0 3 * * *"

// PartitionTask 审计日志分区维护：补未来分区、删过期分区
type PartitionTask struct {
	manager      PartitionMaintainer
	spec         string
	futureMonths int
	timeout      time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewPartitionTask 创建分区维护任务
func NewPartitionTask(manager PartitionMaintainer, spec string, futureMonths int) *PartitionTask {
	if spec == "" {
		spec = DefaultPartitionSpec
	}
	if futureMonths <= 0 {
		futureMonths = 3
	}
	return &PartitionTask{
		manager:      manager,
		spec:         spec,
		futureMonths: futureMonths,
		timeout:      5 * time.Minute,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start 立即执行一次，之后按 spec 执行
func (t *PartitionTask) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	if _, err := t.cron.AddFunc(t.spec, t.execute); err != nil {
		return fmt.Errorf("invalid partition schedule %q: %w", t.spec, err)
	}
	go t.execute()
	t.cron.Start()
	t.running = true

	log.Info().Str("schedule", t.spec).Int("future_months", t.futureMonths).Msg("partition task started")
	return nil
}

// Stop 停止并等待正在执行的任务
func (t *PartitionTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	<-t.cron.Stop().Done()
	t.running = false
	log.Info().Msg("partition task stopped")
}

func (t *PartitionTask) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	t.RunOnce(ctx)
}

// RunOnce 执行一轮维护，返回删除的分区数
// 单步失败只记日志，不影响后续步骤
func (t *PartitionTask) RunOnce(ctx context.Context) int {
	start := time.Now()

	if err := t.manager.HealthCheck(ctx); err != nil {
		log.Warn().Err(err).Msg("partition health check")
	}
	if err := t.manager.EnsureFuturePartitions(ctx, t.futureMonths); err != nil {
		log.Error().Err(err).Msg("ensure future partitions failed")
	}

	dropped, err := t.manager.CleanupExpiredPartitions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cleanup expired partitions failed")
	}

	if stats, err := t.manager.GetAllStats(ctx); err == nil {
		for _, s := range stats {
			log.Info().
				Str("table", s.TableName).
				Int("partitions", s.PartitionCount).
				Float64("size_mb", float64(s.TotalSizeBytes)/1024/1024).
				Msg("partition stats")
		}
	}

	log.Info().Int("dropped", dropped).Dur("elapsed", time.Since(start)).Msg("partition maintenance done")
	return dropped
}
