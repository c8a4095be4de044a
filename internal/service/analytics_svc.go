package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"line_price_portal/internal/repository"
	"line_price_portal/pkg/line"
)

// AnalyticsCacheTTL 统计结果缓存时间
const AnalyticsCacheTTL = 5 * time.Minute

const analyticsCacheKey = "line_price_portal:analytics:summary"

// ==================== 缓存 ====================

// SummaryCache 统计缓存
type SummaryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// RedisSummaryCache 多实例共享
type RedisSummaryCache struct {
	rdb *redis.Client
}

// NewRedisSummaryCache 创建 Redis 缓存
func NewRedisSummaryCache(rdb *redis.Client) *RedisSummaryCache {
	return &RedisSummaryCache{rdb: rdb}
}

func (c *RedisSummaryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return nil, false
	}
	return val, true
}

func (c *RedisSummaryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// MemorySummaryCache 单实例内存缓存
type MemorySummaryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemorySummaryCache 创建内存缓存，now 为 nil 时使用 time.Now
func NewMemorySummaryCache(now func() time.Time) *MemorySummaryCache {
	if now == nil {
		now = time.Now
	}
	return &MemorySummaryCache{entries: make(map[string]memoryEntry), now: now}
}

func (c *MemorySummaryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *MemorySummaryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: c.now().Add(ttl)}
}

// ==================== 统计 ====================

// AnalyticsSummary 后台统计
type AnalyticsSummary struct {
	Users       *repository.UserStats    `json:"users"`
	Requests    *repository.RequestStats `json:"requests"`
	Content     *repository.ContentStats `json:"content"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// LineUsage LINE 推送用量
type LineUsage struct {
	*line.QuotaUsage
	Error string `json:"error,omitempty"`
}

// QuotaReporter LINE 用量查询
type QuotaReporter interface {
	LineQuota(ctx context.Context) (*line.QuotaUsage, string)
}

// AnalyticsService 统计服务
type AnalyticsService struct {
	stats repository.StatsRepository
	cache SummaryCache
	quota QuotaReporter
	now   func() time.Time
}

// NewAnalyticsService 创建统计服务，cache 为 nil 时使用内存缓存
func NewAnalyticsService(stats repository.StatsRepository, cache SummaryCache, quota QuotaReporter) *AnalyticsService {
	if cache == nil {
		cache = NewMemorySummaryCache(nil)
	}
	return &AnalyticsService{stats: stats, cache: cache, quota: quota, now: time.Now}
}

// Summary 统计汇总，缓存 5 分钟
func (s *AnalyticsService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	if raw, ok := s.cache.Get(ctx, analyticsCacheKey); ok {
		var cached AnalyticsSummary
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	now := s.now()
	since := now.Add(-7 * 24 * time.Hour)

	users, err := s.stats.Users(ctx, since)
	if err != nil {
		return nil, err
	}
	requests, err := s.stats.Requests(ctx, since)
	if err != nil {
		return nil, err
	}
	content, err := s.stats.Content(ctx, since)
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{
		Users:       users,
		Requests:    requests,
		Content:     content,
		GeneratedAt: now,
	}
	if raw, err := json.Marshal(summary); err == nil {
		s.cache.Set(ctx, analyticsCacheKey, raw, AnalyticsCacheTTL)
	}
	return summary, nil
}

// LineUsage 本月 LINE 推送用量
func (s *AnalyticsService) LineUsage(ctx context.Context) *LineUsage {
	if s.quota == nil {
		return &LineUsage{QuotaUsage: line.NewQuotaUsage(0), Error: "LINE not configured"}
	}
	usage, errMsg := s.quota.LineQuota(ctx)
	return &LineUsage{QuotaUsage: usage, Error: errMsg}
}
