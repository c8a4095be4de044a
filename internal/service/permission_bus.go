package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PermissionBus 跨实例广播权限表变更
type PermissionBus interface {
	Publish(ctx context.Context) error
}

// PermissionChannel Redis 频道名
const PermissionChannel = "line_price_portal:role_permissions:invalidate"

// RedisPermissionBus 基于 Redis Pub/Sub 的广播
// 消息体是发送方实例 ID，实例忽略自己发出的消息
type RedisPermissionBus struct {
	rdb        *redis.Client
	channel    string
	instanceID string
}

// NewRedisPermissionBus 创建广播
func NewRedisPermissionBus(rdb *redis.Client) *RedisPermissionBus {
	return &RedisPermissionBus{
		rdb:        rdb,
		channel:    PermissionChannel,
		instanceID: uuid.NewString(),
	}
}

// Publish 通知其它实例失效缓存
func (b *RedisPermissionBus) Publish(ctx context.Context) error {
	return b.rdb.Publish(ctx, b.channel, b.instanceID).Err()
}

// Subscribe 阻塞监听，收到其它实例的消息时调用 onInvalidate，ctx 取消后返回
func (b *RedisPermissionBus) Subscribe(ctx context.Context, onInvalidate func()) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	log.Info().Str("channel", b.channel).Msg("permission invalidation subscriber started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload == b.instanceID {
				continue
			}
			log.Debug().Str("from", msg.Payload).Msg("role permissions invalidated by peer")
			onInvalidate()
		}
	}
}
