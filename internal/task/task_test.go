package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
	"line_price_portal/pkg/database"
)

// ==================== 辅助函数 ====================

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.AutoMigrateModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func timePtr(t time.Time) *time.Time {
	return &t
}

type stubMaintainer struct {
	mu           sync.Mutex
	ensureCalls  int
	cleanupCalls int
	futureMonths int
	healthErr    error
	ensureErr    error
	dropped      int
}

func (s *stubMaintainer) HealthCheck(context.Context) error { return s.healthErr }

func (s *stubMaintainer) EnsureFuturePartitions(_ context.Context, months int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCalls++
	s.futureMonths = months
	return s.ensureErr
}

func (s *stubMaintainer) CleanupExpiredPartitions(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupCalls++
	return s.dropped, nil
}

func (s *stubMaintainer) GetAllStats(context.Context) ([]database.TableStats, error) {
	return []database.TableStats{{TableName: "user_logs", PartitionCount: 4}}, nil
}

// ==================== GrantExpiryTask 测试 ====================

func TestGrantExpiryTask_RunOnce(t *testing.T) {
	db := setupTaskTestDB(t)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	user := &model.User{Provider: model.ProviderLine, ProviderID: "U1", Name: "u", Role: model.RoleUser, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	var groups []model.PriceGroup
	for _, name := range []string{"A", "B", "C"} {
		g := model.PriceGroup{Name: name, IsActive: true}
		if err := db.Create(&g).Error; err != nil {
			t.Fatalf("创建价格组失败: %v", err)
		}
		groups = append(groups, g)
	}

	rows := []model.UserGroupAccess{
		{UserID: user.ID, PriceGroupID: groups[0].ID, ExpiresAt: timePtr(now.Add(-time.Hour))}, // 已过期
		{UserID: user.ID, PriceGroupID: groups[1].ID, ExpiresAt: timePtr(now.Add(time.Hour))},  // 未过期
		{UserID: user.ID, PriceGroupID: groups[2].ID},                                         // 永久
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("创建授权失败: %v", err)
	}

	task := NewGrantExpiryTask(repository.NewGrantRepository(db), "")
	task.now = func() time.Time { return now }

	n, err := task.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	var remaining int64
	db.Model(&model.UserGroupAccess{}).Count(&remaining)
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}

	// 再执行一次无可删除
	if n, _ := task.RunOnce(context.Background()); n != 0 {
		t.Errorf("second run deleted = %d, want 0", n)
	}
}

type failingPurger struct{}

func (failingPurger) DeleteExpiredGroupAccess(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestGrantExpiryTask_Error(t *testing.T) {
	task := NewGrantExpiryTask(failingPurger{}, "")
	if _, err := task.RunOnce(context.Background()); err == nil {
		t.Error("存储错误应返回")
	}
}

func TestGrantExpiryTask_InvalidSpec(t *testing.T) {
	task := NewGrantExpiryTask(failingPurger{}, "not a cron")
	if err := task.Start(); err == nil {
		task.Stop()
		t.Error("无效 cron 表达式应返回错误")
	}
}

func TestGrantExpiryTask_StartStop(t *testing.T) {
	task := NewGrantExpiryTask(failingPurger{}, "")
	if err := task.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	if err := task.Start(); err != nil {
		t.Errorf("重复启动不应报错: %v", err)
	}
	task.Stop()
	task.Stop()
}

// ==================== PartitionTask 测试 ====================

func TestPartitionTask_RunOnce(t *testing.T) {
	stub := &stubMaintainer{healthErr: errors.New("missing"), ensureErr: errors.New("boom"), dropped: 2}
	task := NewPartitionTask(stub, "", 6)

	dropped := task.RunOnce(context.Background())
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	// 前置步骤失败不影响清理
	if stub.ensureCalls != 1 || stub.cleanupCalls != 1 {
		t.Errorf("ensure = %d, cleanup = %d, want 1/1", stub.ensureCalls, stub.cleanupCalls)
	}
	if stub.futureMonths != 6 {
		t.Errorf("futureMonths = %d, want 6", stub.futureMonths)
	}
}

func TestPartitionTask_DefaultFutureMonths(t *testing.T) {
	stub := &stubMaintainer{}
	task := NewPartitionTask(stub, "", 0)
	task.RunOnce(context.Background())
	if stub.futureMonths != 3 {
		t.Errorf("futureMonths = %d, want 3", stub.futureMonths)
	}
}

// ==================== TaskManager 测试 ====================

func TestTaskManager_Status(t *testing.T) {
	tm := NewTaskManager(&TaskManagerDeps{Grants: failingPurger{}}, nil)
	status := tm.Status()
	if !status["grant_expiry"] {
		t.Error("grant_expiry 应启用")
	}
	if status["partition"] {
		t.Error("未提供分区依赖时不应启用")
	}

	if _, err := tm.TriggerPartitionMaintenance(context.Background()); !errors.Is(err, ErrTaskDisabled) {
		t.Errorf("err = %v, want ErrTaskDisabled", err)
	}
}

func TestTaskManager_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrantExpiryEnabled = false
	tm := NewTaskManager(&TaskManagerDeps{Grants: failingPurger{}, Partitions: &stubMaintainer{}}, cfg)

	if _, err := tm.TriggerGrantExpiry(context.Background()); !errors.Is(err, ErrTaskDisabled) {
		t.Errorf("err = %v, want ErrTaskDisabled", err)
	}
	n, err := tm.TriggerPartitionMaintenance(context.Background())
	if err != nil || n != 0 {
		t.Errorf("TriggerPartitionMaintenance = %d, %v", n, err)
	}
}

func TestTaskManager_StartStop(t *testing.T) {
	stub := &stubMaintainer{}
	cfg := DefaultConfig()
	tm := NewTaskManager(&TaskManagerDeps{Grants: failingPurger{}, Partitions: stub}, cfg)
	if err := tm.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	tm.Stop()

	cfg.PartitionSpec = "bad"
	tm = NewTaskManager(&TaskManagerDeps{Grants: failingPurger{}, Partitions: stub}, cfg)
	if err := tm.Start(); err == nil {
		tm.Stop()
		t.Error("无效的分区调度应返回错误")
	}
}
