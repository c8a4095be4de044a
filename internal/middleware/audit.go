package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ==================== 审计上下文 ====================

type auditContextKey struct{}

// AuditInfo 审计信息
type AuditInfo struct {
	UserID    int64
	IP        string
	UserAgent string
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, info *AuditInfo) context.Context {
	return context.WithValue(ctx, auditContextKey{}, info)
}

// GetAuditInfo 从 context 获取审计信息，没有时返回空结构
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok && info != nil {
		return info
	}
	return &AuditInfo{}
}

// ==================== Gin 中间件 ====================

// AuditContext 审计上下文中间件
// 把调用方 IP、UA 以及 JWT 中的用户 ID 注入 request context，供审计日志使用
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := &AuditInfo{
			UserID:    GetUserID(c),
			IP:        ClientIP(c),
			UserAgent: c.Request.UserAgent(),
		}
		c.Request = c.Request.WithContext(WithAuditInfo(c.Request.Context(), info))
		c.Next()
	}
}

// ClientIP 客户端 IP
// 优先 X-Forwarded-For 第一个地址，其次 X-Real-IP、CF-Connecting-IP
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
