package database

import (
	"testing"
	"testing/fstest"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestParsePartitionConfig(t *testing.T) {
	cfg, err := ParsePartitionConfig(`
# 注释
user_logs, 12

login_events,0
`)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(cfg.Tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(cfg.Tables))
	}
	if cfg.Tables[0].TableName != "user_logs" || cfg.Tables[0].RetentionMonth != 12 {
		t.Errorf("tables[0] = %+v", cfg.Tables[0])
	}
	if cfg.Tables[1].RetentionMonth != 0 {
		t.Errorf("tables[1].RetentionMonth = %d, want 0", cfg.Tables[1].RetentionMonth)
	}
	if !cfg.IsPartitionedTable("login_events") || cfg.IsPartitionedTable("users") {
		t.Error("IsPartitionedTable 结果错误")
	}
}

func TestParsePartitionConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing retention", "user_logs"},
		{"bad retention", "user_logs,abc"},
		{"negative retention", "user_logs,-1"},
		{"bad table name", "user-logs;drop,12"},
		{"duplicate", "user_logs,12\nuser_logs,6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePartitionConfig(tt.content); err == nil {
				t.Errorf("ParsePartitionConfig(%q) 应返回错误", tt.content)
			}
		})
	}
}

func TestLoadPartitionConfig(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/partition_tables.conf": {Data: []byte("user_logs,12\n")},
		"sql/user_logs.sql":         {Data: []byte("CREATE TABLE user_logs ();")},
	}
	cfg, err := LoadPartitionConfig(fsys, "sql")
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if got := cfg.GetTable("user_logs").SQLContent; got != "CREATE TABLE user_logs ();" {
		t.Errorf("SQLContent = %q", got)
	}

	delete(fsys, "sql/user_logs.sql")
	if _, err := LoadPartitionConfig(fsys, "sql"); err == nil {
		t.Error("缺少 SQL 文件时应返回错误")
	}
}

func TestLoadPartitionConfig_Embedded(t *testing.T) {
	cfg, err := LoadPartitionConfig(PartitionSQL, PartitionRoot)
	if err != nil {
		t.Fatalf("加载嵌入配置失败: %v", err)
	}
	table := cfg.GetTable("user_logs")
	if table == nil {
		t.Fatal("缺少 user_logs 配置")
	}
	if table.RetentionMonth != 12 {
		t.Errorf("RetentionMonth = %d, want 12", table.RetentionMonth)
	}
}

func TestPartitionNaming(t *testing.T) {
	month := time.Date(2026, time.March, 17, 8, 0, 0, 0, time.UTC)
	name := PartitionName("user_logs", month)
	if name != "user_logs_y2026m03" {
		t.Errorf("PartitionName = %s, want user_logs_y2026m03", name)
	}

	parsed, err := ParsePartitionMonth(name, "user_logs")
	if err != nil {
		t.Fatalf("解析分区名失败: %v", err)
	}
	if !parsed.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParsePartitionMonth = %v", parsed)
	}

	for _, bad := range []string{"user_logs", "user_logs_default", "other_y2026m03", "user_logs_y2026m13"} {
		if _, err := ParsePartitionMonth(bad, "user_logs"); err == nil {
			t.Errorf("ParsePartitionMonth(%s) 应返回错误", bad)
		}
	}
}

func TestRetentionCutoff(t *testing.T) {
	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	got := RetentionCutoff(now, 12)
	want := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("RetentionCutoff = %v, want %v", got, want)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"ERROR":  logger.Error,
		"info":   logger.Info,
		"warn":   logger.Warn,
		"":       logger.Warn,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

type testLogRow struct {
	ID     int64 `gorm:"primaryKey"`
	Action string
}

func (testLogRow) TableName() string { return "user_logs" }

type testPlainRow struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func TestMigrator_SQLiteFallback(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	m, err := NewMigrator(db, MigrateOptions{
		Models:            []interface{}{&testPlainRow{}},
		PartitionedModels: []interface{}{&testLogRow{}},
	})
	if err != nil {
		t.Fatalf("创建迁移器失败: %v", err)
	}
	if err := m.Run(t.Context()); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	for _, table := range []string{"user_logs", "test_plain_rows"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("表 %s 未创建", table)
		}
	}
}
