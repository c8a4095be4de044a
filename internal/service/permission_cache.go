package service

import (
	"sync"
	"time"

	"line_price_portal/internal/model"
)

// PermissionCache 角色权限快照缓存
// 快照超过 ttl 视为失效；now 可注入以便测试
type PermissionCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	snapshot map[model.Role][]model.Permission
	loadedAt time.Time
	valid    bool
}

// NewPermissionCache 创建缓存，now 为 nil 时使用 time.Now
func NewPermissionCache(ttl time.Duration, now func() time.Time) *PermissionCache {
	if now == nil {
		now = time.Now
	}
	return &PermissionCache{ttl: ttl, now: now}
}

// Get 返回未过期的快照
func (c *PermissionCache) Get() (map[model.Role][]model.Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid || c.now().Sub(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.snapshot, true
}

// Set 写入快照，调用方不得再修改 snapshot
func (c *PermissionCache) Set(snapshot map[model.Role][]model.Permission) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = snapshot
	c.loadedAt = c.now()
	c.valid = true
}

// Invalidate 丢弃快照
func (c *PermissionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
	c.valid = false
}
