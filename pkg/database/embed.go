package database

import "embed"

// PartitionSQL 分区表定义
//
//go:embed partitions/*.sql partitions/*.conf
var PartitionSQL embed.FS

// PartitionRoot PartitionSQL 中的目录
const PartitionRoot = "partitions"
