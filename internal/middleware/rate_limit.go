package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按 key 的冷却限流
// 同一个 key 在 interval 内只放行一次
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
	At         time.Time     // 放行时占用额度的时间
}

// Check 检查并占用本次额度
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(entry.lastTime)
	if !entry.lastTime.IsZero() && elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true, At: now}
}

// Release 归还 at 时刻占用的额度，之后已被重新占用则不处理
func (r *CooldownLimiter) Release(key string, at time.Time) {
	actual, ok := r.locks.Load(key)
	if !ok {
		return
	}
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.lastTime.Equal(at) {
		entry.lastTime = time.Time{}
	}
}

// Reset 重置指定 key
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// UserKey 用户维度的限流 key
func UserKey(userID int64, action string) string {
	return fmt.Sprintf("user:%d:%s", userID, action)
}

// ==================== Gin 中间件 ====================

// UserCooldown 按当前用户限流，需挂在 JWTAuth 之后
// 请求失败（4xx/5xx）不计入冷却，用户修正后可以立即重试
func UserCooldown(limiter *CooldownLimiter, action string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if interval <= 0 {
			c.Next()
			return
		}

		key := UserKey(GetUserID(c), action)
		result := limiter.Check(key, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data":    gin.H{"retry_after": int(result.RetryAfter.Seconds()) + 1},
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			limiter.Release(key, result.At)
		}
	}
}

func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds()) + 1
	if seconds < 60 {
		return fmt.Sprintf("too many requests, retry in %d seconds", seconds)
	}
	return fmt.Sprintf("too many requests, retry in %d minutes", (seconds+59)/60)
}
