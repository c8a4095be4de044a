package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PartitionManager 按月 range 分区的建表、补分区与清理（仅 PostgreSQL）
type PartitionManager struct {
	db     *gorm.DB
	config *PartitionConfig
	now    func() time.Time
}

// NewPartitionManager 创建分区管理器
func NewPartitionManager(db *gorm.DB, config *PartitionConfig) *PartitionManager {
	return &PartitionManager{db: db, config: config, now: time.Now}
}

// ==================== 命名 ====================

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// PartitionName 如 user_logs_y2026m03
func PartitionName(table string, month time.Time) string {
	m := monthStart(month)
	return fmt.Sprintf("%s_y%dm%02d", table, m.Year(), m.Month())
}

// ParsePartitionMonth 从分区名解析月份
func ParsePartitionMonth(partitionName, table string) (time.Time, error) {
	suffix, ok := strings.CutPrefix(partitionName, table+"_y")
	if !ok || len(suffix) < 6 {
		return time.Time{}, fmt.Errorf("not a monthly partition of %s: %s", table, partitionName)
	}
	var year, month int
	if _, err := fmt.Sscanf(suffix, "%dm%d", &year, &month); err != nil {
		return time.Time{}, err
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in %s", partitionName)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// RetentionCutoff 早于该月份的分区可以删除
func RetentionCutoff(now time.Time, retentionMonths int) time.Time {
	return monthStart(now).AddDate(0, -retentionMonths, 0)
}

// ==================== 建表 ====================

// InitPartitionTables 创建缺失的分区主表
func (m *PartitionManager) InitPartitionTables(ctx context.Context) error {
	for _, table := range m.config.Tables {
		exists, err := m.tableExists(ctx, table.TableName)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table.TableName, err)
		}
		if exists {
			continue
		}

		if err := m.db.WithContext(ctx).Exec(table.SQLContent).Error; err != nil {
			return fmt.Errorf("create table %s: %w", table.TableName, err)
		}
		log.Info().Str("table", table.TableName).Msg("partitioned table created")
	}
	return nil
}

func (m *PartitionManager) tableExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM pg_tables
		WHERE schemaname = current_schema() AND tablename = ?
	`, name).Scan(&count).Error
	return count > 0, err
}

// ==================== 补分区 ====================

// EnsureFuturePartitions 确保当月及未来 monthsAhead 个月的分区存在
func (m *PartitionManager) EnsureFuturePartitions(ctx context.Context, monthsAhead int) error {
	current := monthStart(m.now())
	var failed []string
	for i := 0; i <= monthsAhead; i++ {
		month := current.AddDate(0, i, 0)
		for _, table := range m.config.Tables {
			if err := m.createPartition(ctx, table.TableName, month); err != nil {
				log.Error().Err(err).Str("table", table.TableName).Time("month", month).Msg("create partition failed")
				failed = append(failed, PartitionName(table.TableName, month))
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("create partitions failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (m *PartitionManager) createPartition(ctx context.Context, table string, month time.Time) error {
	start := monthStart(month)
	name := PartitionName(table, start)

	exists, err := m.tableExists(ctx, name)
	if err != nil || exists {
		return err
	}

	sql := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES FROM ('%s') TO ('%s')`,
		name, table, start.Format("2006-01-02"), start.AddDate(0, 1, 0).Format("2006-01-02"),
	)
	if err := m.db.WithContext(ctx).Exec(sql).Error; err != nil {
		return err
	}
	log.Info().Str("partition", name).Msg("partition created")
	return nil
}

// ==================== 清理 ====================

// CleanupExpiredPartitions 删除超过保留期的分区，返回删除数量
func (m *PartitionManager) CleanupExpiredPartitions(ctx context.Context) (int, error) {
	dropped := 0
	for _, table := range m.config.Tables {
		if table.RetentionMonth == 0 {
			continue
		}
		cutoff := RetentionCutoff(m.now(), table.RetentionMonth)

		partitions, err := m.ListPartitions(ctx, table.TableName)
		if err != nil {
			return dropped, fmt.Errorf("list partitions of %s: %w", table.TableName, err)
		}
		for _, p := range partitions {
			month, err := ParsePartitionMonth(p.Name, table.TableName)
			if err != nil || !month.Before(cutoff) {
				continue
			}
			if err := m.db.WithContext(ctx).Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", p.Name)).Error; err != nil {
				log.Error().Err(err).Str("partition", p.Name).Msg("drop partition failed")
				continue
			}
			log.Info().Str("partition", p.Name).Msg("expired partition dropped")
			dropped++
		}
	}
	return dropped, nil
}

// ==================== 查询 ====================

// PartitionInfo 分区信息
type PartitionInfo struct {
	Name      string `gorm:"column:partition_name"`
	Range     string `gorm:"column:partition_range"`
	SizeBytes int64  `gorm:"column:size_bytes"`
}

// ListPartitions 列出表的所有分区
func (m *PartitionManager) ListPartitions(ctx context.Context, table string) ([]PartitionInfo, error) {
	var partitions []PartitionInfo
	err := m.db.WithContext(ctx).Raw(`
		SELECT
			child.relname AS partition_name,
			pg_get_expr(child.relpartbound, child.oid) AS partition_range,
			pg_total_relation_size(child.oid) AS size_bytes
		FROM pg_inherits
		JOIN pg_class parent ON pg_inherits.inhparent = parent.oid
		JOIN pg_class child ON pg_inherits.inhrelid = child.oid
		WHERE parent.relname = ?
		ORDER BY child.relname
	`, table).Scan(&partitions).Error
	return partitions, err
}

// TableStats 分区表统计
type TableStats struct {
	TableName      string `gorm:"column:table_name"`
	PartitionCount int    `gorm:"column:partition_count"`
	TotalSizeBytes int64  `gorm:"column:total_size_bytes"`
}

// GetAllStats 全部分区表的分区数与大小
func (m *PartitionManager) GetAllStats(ctx context.Context) ([]TableStats, error) {
	names := m.config.GetTableNames()
	if len(names) == 0 {
		return nil, nil
	}

	var stats []TableStats
	err := m.db.WithContext(ctx).Raw(`
		SELECT
			parent.relname AS table_name,
			COUNT(child.relname) AS partition_count,
			COALESCE(SUM(pg_total_relation_size(child.oid)), 0) AS total_size_bytes
		FROM pg_inherits
		JOIN pg_class parent ON pg_inherits.inhparent = parent.oid
		JOIN pg_class child ON pg_inherits.inhrelid = child.oid
		WHERE parent.relname IN ?
		GROUP BY parent.relname
		ORDER BY parent.relname
	`, names).Scan(&stats).Error
	return stats, err
}

// HealthCheck 检查当月与下月分区是否存在
func (m *PartitionManager) HealthCheck(ctx context.Context) error {
	current := monthStart(m.now())
	var missing []string
	for _, table := range m.config.Tables {
		for _, month := range []time.Time{current, current.AddDate(0, 1, 0)} {
			name := PartitionName(table.TableName, month)
			exists, err := m.tableExists(ctx, name)
			if err != nil {
				return err
			}
			if !exists {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing partitions: %s", strings.Join(missing, ", "))
	}
	return nil
}
