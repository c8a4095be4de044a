package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// GrantPurger 删除过期授权
type GrantPurger interface {
	DeleteExpiredGroupAccess(ctx context.Context, now time.Time) (int64, error)
}

// DefaultGrantExpirySpec 每 10 分钟（带秒字段）
const DefaultGrantExpirySpec = "0 */10 * * * *"

// GrantExpiryTask 定时清理已过期的价格组授权
type GrantExpiryTask struct {
	grants  GrantPurger
	spec    string
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewGrantExpiryTask spec 为空时使用默认值
func NewGrantExpiryTask(grants GrantPurger, spec string) *GrantExpiryTask {
	if spec == "" {
		spec = DefaultGrantExpirySpec
	}
	return &GrantExpiryTask{
		grants:  grants,
		spec:    spec,
		timeout: time.Minute,
		now:     time.Now,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start 注册定时任务并启动，重复调用无副作用
func (t *GrantExpiryTask) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	if _, err := t.cron.AddFunc(t.spec, t.execute); err != nil {
		return fmt.Errorf("invalid grant expiry schedule %q: %w", t.spec, err)
	}
	t.cron.Start()
	t.running = true

	log.Info().Str("schedule", t.spec).Msg("grant expiry task started")
	return nil
}

// Stop 停止并等待正在执行的任务
func (t *GrantExpiryTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	<-t.cron.Stop().Done()
	t.running = false
	log.Info().Msg("grant expiry task stopped")
}

func (t *GrantExpiryTask) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if _, err := t.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("purge expired grants failed")
	}
}

// RunOnce 立即清理一次，返回删除行数
func (t *GrantExpiryTask) RunOnce(ctx context.Context) (int64, error) {
	n, err := t.grants.DeleteExpiredGroupAccess(ctx, t.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("expired grants purged")
	}
	return n, nil
}
