package database

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MigrateOptions 迁移选项
type MigrateOptions struct {
	// 分区表定义，为 nil 时使用嵌入的 PartitionSQL
	PartitionFS   fs.FS
	PartitionRoot string
	// 非分区表
	Models []interface{}
	// 分区表对应的 Model，非 PostgreSQL 时退化为普通表
	PartitionedModels []interface{}
	// 预建未来几个月的分区，默认 3
	FutureMonths int
}

// Migrator 建表与分区初始化
type Migrator struct {
	db      *gorm.DB
	config  *PartitionConfig
	manager *PartitionManager
	opts    MigrateOptions
}

// NewMigrator 加载分区配置并创建迁移器
func NewMigrator(db *gorm.DB, opts MigrateOptions) (*Migrator, error) {
	if opts.PartitionFS == nil {
		opts.PartitionFS = PartitionSQL
		opts.PartitionRoot = PartitionRoot
	}
	if opts.FutureMonths <= 0 {
		opts.FutureMonths = 3
	}

	config, err := LoadPartitionConfig(opts.PartitionFS, opts.PartitionRoot)
	if err != nil {
		return nil, fmt.Errorf("load partition config: %w", err)
	}
	return &Migrator{
		db:      db,
		config:  config,
		manager: NewPartitionManager(db, config),
		opts:    opts,
	}, nil
}

// Run 依次创建分区主表、未来分区、其余表
func (m *Migrator) Run(ctx context.Context) error {
	start := time.Now()

	if m.db.Dialector.Name() == "postgres" {
		if err := m.manager.InitPartitionTables(ctx); err != nil {
			return err
		}
		if err := m.manager.EnsureFuturePartitions(ctx, m.opts.FutureMonths); err != nil {
			return err
		}
	} else if len(m.opts.PartitionedModels) > 0 {
		// sqlite 等不支持声明式分区
		if err := m.db.WithContext(ctx).AutoMigrate(m.opts.PartitionedModels...); err != nil {
			return fmt.Errorf("auto migrate partitioned models: %w", err)
		}
	}

	if len(m.opts.Models) > 0 {
		if err := m.db.WithContext(ctx).AutoMigrate(m.opts.Models...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	log.Info().
		Str("dialect", m.db.Dialector.Name()).
		Int("models", len(m.opts.Models)).
		Strs("partitioned", m.config.GetTableNames()).
		Dur("elapsed", time.Since(start)).
		Msg("database migrated")
	return nil
}

// Manager 分区管理器，供维护任务使用
func (m *Migrator) Manager() *PartitionManager {
	return m.manager
}

// Config 分区配置
func (m *Migrator) Config() *PartitionConfig {
	return m.config
}
