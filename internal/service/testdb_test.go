package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

// ==================== 测试辅助 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")

	// :memory: 每个连接是独立的库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	models := append(model.AutoMigrateModels(), &model.UserLog{})
	require.NoError(t, db.AutoMigrate(models...), "数据库迁移失败")
	return db
}

func createUser(t *testing.T, db *gorm.DB, providerID string, role model.Role) *model.User {
	user := &model.User{
		Provider:   model.ProviderLine,
		ProviderID: providerID,
		Name:       "user " + providerID,
		Role:       role,
		IsActive:   true,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user), "创建用户失败")
	return user
}

func createGroup(t *testing.T, db *gorm.DB, name string) *model.PriceGroup {
	group := &model.PriceGroup{Name: name, IsActive: true}
	require.NoError(t, repository.NewPriceGroupRepository(db).Create(context.Background(), group), "创建价格组失败")
	return group
}

func createBranch(t *testing.T, db *gorm.DB, code string) *model.Branch {
	branch := &model.Branch{Name: "Branch " + code, Code: code, IsActive: true}
	require.NoError(t, repository.NewBranchRepository(db).Create(context.Background(), branch), "创建分店失败")
	return branch
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

// recordingAudit 记录审计调用
type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Log(_ context.Context, entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) actions() []model.LogAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.LogAction, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

func (r *recordingAudit) last() AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return AuditEntry{}
	}
	return r.entries[len(r.entries)-1]
}

// fixedClock 可手动推进的时钟
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errInjected = errors.New("injected failure")

// failGrantOnGroup 写入 user_group_access 遇到 groupID 时让 INSERT 失败
func failGrantOnGroup(t *testing.T, db *gorm.DB, groupID int64) {
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_grant", func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Table != "user_group_access" {
			return
		}
		rv := reflect.Indirect(tx.Statement.ReflectValue)
		check := func(v reflect.Value) {
			if row, ok := reflect.Indirect(v).Interface().(model.UserGroupAccess); ok && row.PriceGroupID == groupID {
				tx.AddError(errInjected)
			}
		}
		if rv.Kind() == reflect.Slice {
			for i := 0; i < rv.Len(); i++ {
				check(rv.Index(i))
			}
			return
		}
		check(rv)
	})
	require.NoError(t, err)
}
