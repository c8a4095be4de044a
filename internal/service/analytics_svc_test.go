package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"line_price_portal/internal/repository"
	"line_price_portal/pkg/line"
)

type countingStats struct {
	repository.StatsRepository
	calls int
}

func (s *countingStats) Users(ctx context.Context, since time.Time) (*repository.UserStats, error) {
	s.calls++
	return s.StatsRepository.Users(ctx, since)
}

type stubQuota struct{}

func (stubQuota) LineQuota(context.Context) (*line.QuotaUsage, string) {
	return line.NewQuotaUsage(250), ""
}

func TestAnalyticsService_SummaryCached(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "U1", "user")
	createGroup(t, db, "Gold")

	clock := newFixedClock()
	stats := &countingStats{StatsRepository: repository.NewStatsRepository(db)}
	svc := NewAnalyticsService(stats, NewMemorySummaryCache(clock.Now), stubQuota{})
	svc.now = clock.Now
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Users.Total)
	assert.Equal(t, int64(1), summary.Content.PriceGroups)

	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.calls)

	clock.Advance(AnalyticsCacheTTL)
	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.calls)
}

func TestAnalyticsService_LineUsage(t *testing.T) {
	svc := NewAnalyticsService(nil, nil, stubQuota{})
	usage := svc.LineUsage(context.Background())
	assert.Equal(t, int64(750), usage.Remaining)
	assert.Equal(t, 25, usage.PercentUsed)
	assert.Empty(t, usage.Error)

	none := NewAnalyticsService(nil, nil, nil).LineUsage(context.Background())
	assert.Equal(t, int64(1000), none.Remaining)
	assert.NotEmpty(t, none.Error)
}
