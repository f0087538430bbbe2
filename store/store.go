package store

import (
	"context"
	"errors"
)

// 错误：没有该年份的快照
var ErrNotFound = errors.New("snapshot not found")

// Store 网络快照的数据源
type Store interface {
	// Load 读取某一年份的完整快照
	Load(ctx context.Context, year int) (*Snapshot, error)
}

// Writer 可写入快照的数据源
type Writer interface {
	Save(ctx context.Context, s *Snapshot) error
}
