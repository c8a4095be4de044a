package database

import (
	"bufio"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// PartitionTableConfig 单个分区表
type PartitionTableConfig struct {
	TableName      string
	RetentionMonth int // 0 表示永久保留
	SQLContent     string
}

// PartitionConfig 全部分区表
type PartitionConfig struct {
	Tables []PartitionTableConfig
}

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// LoadPartitionConfig 从 fsys 的 root 目录读取 partition_tables.conf 与各表 SQL
// 嵌入文件用 PartitionSQL，开发时可传 os.DirFS
func LoadPartitionConfig(fsys fs.FS, root string) (*PartitionConfig, error) {
	confData, err := fs.ReadFile(fsys, path.Join(root, "partition_tables.conf"))
	if err != nil {
		return nil, fmt.Errorf("read partition_tables.conf: %w", err)
	}

	cfg, err := ParsePartitionConfig(string(confData))
	if err != nil {
		return nil, err
	}

	for i := range cfg.Tables {
		sqlFile := cfg.Tables[i].TableName + ".sql"
		sqlData, err := fs.ReadFile(fsys, path.Join(root, sqlFile))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sqlFile, err)
		}
		cfg.Tables[i].SQLContent = string(sqlData)
	}
	return cfg, nil
}

// ParsePartitionConfig 解析 "表名,保留月数" 行，# 开头为注释
func ParsePartitionConfig(content string) (*PartitionConfig, error) {
	cfg := &PartitionConfig{}
	seen := map[string]bool{}
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected <table>,<months>: %q", lineNum, line)
		}

		name := strings.TrimSpace(parts[0])
		if !tableNamePattern.MatchString(name) {
			return nil, fmt.Errorf("line %d: invalid table name %q", lineNum, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("line %d: duplicate table %q", lineNum, name)
		}
		retention, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || retention < 0 {
			return nil, fmt.Errorf("line %d: invalid retention %q", lineNum, parts[1])
		}

		seen[name] = true
		cfg.Tables = append(cfg.Tables, PartitionTableConfig{
			TableName:      name,
			RetentionMonth: retention,
		})
	}

	return cfg, scanner.Err()
}

// GetTableNames 全部分区表名
func (c *PartitionConfig) GetTableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.TableName
	}
	return names
}

// GetTable 指定表，不存在返回 nil
func (c *PartitionConfig) GetTable(name string) *PartitionTableConfig {
	for i := range c.Tables {
		if c.Tables[i].TableName == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// IsPartitionedTable 是否为分区表
func (c *PartitionConfig) IsPartitionedTable(name string) bool {
	return c.GetTable(name) != nil
}
