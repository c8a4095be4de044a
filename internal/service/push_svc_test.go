package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

func TestPushService_SubscribeLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPushService(repository.NewPushSubscriptionRepository(db))
	ctx := context.Background()
	user := createUser(t, db, "U1", model.RoleUser)

	req := &dto.PushSubscribeRequest{Endpoint: "https://push.example.com/abc"}
	req.Keys.P256dh = "key"
	req.Keys.Auth = "auth"

	require.NoError(t, svc.Subscribe(ctx, user.ID, req, "Mozilla"))
	require.NoError(t, svc.Unsubscribe(ctx, user.ID, req.Endpoint))
	subs, err := svc.ActiveSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// 重新订阅恢复启用
	require.NoError(t, svc.Subscribe(ctx, user.ID, req, "Mozilla"))
	subs, err = svc.ActiveSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Mozilla", subs[0].UserAgent)

	assert.NoError(t, svc.Unsubscribe(ctx, user.ID, "https://push.example.com/none"))
	assert.Error(t, svc.Subscribe(ctx, user.ID, &dto.PushSubscribeRequest{Endpoint: "x"}, ""))
}
