package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"NotiFlow/internal/modules/notification/domain/entity"
	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "notification:"

type notificationCacheImpl struct {
	client *goredis.Client
}

// NewNotificationCache 创建 Redis 通知缓存。client 为 nil 时所有操作降级为未命中/空操作
func NewNotificationCache(client *goredis.Client) repository.NotificationCache {
	return &notificationCacheImpl{client: client}
}

func cacheKey(notificationID string) string {
	return keyPrefix + notificationID
}

func (c *notificationCacheImpl) Get(ctx context.Context, notificationID string) *entity.Notification {
	if c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKey(notificationID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			zlog.Warn("notification cache get failed", zap.String("notification_id", notificationID), zap.Error(err))
		}
		return nil
	}

	var notif entity.Notification
	if err := json.Unmarshal(raw, &notif); err != nil {
		// 缓存内容损坏按未命中处理，下一次写会覆盖
		zlog.Warn("notification cache decode failed", zap.String("notification_id", notificationID), zap.Error(err))
		return nil
	}
	return &notif
}

func (c *notificationCacheImpl) Set(ctx context.Context, notif *entity.Notification, ttl time.Duration) {
	if c.client == nil || notif == nil {
		return
	}
	raw, err := json.Marshal(notif)
	if err != nil {
		zlog.Warn("notification cache encode failed", zap.String("notification_id", notif.NotificationId), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(notif.NotificationId), raw, ttl).Err(); err != nil {
		zlog.Warn("notification cache set failed", zap.String("notification_id", notif.NotificationId), zap.Error(err))
	}
}

func (c *notificationCacheImpl) Delete(ctx context.Context, notificationID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(notificationID)).Err(); err != nil {
		zlog.Warn("notification cache delete failed", zap.String("notification_id", notificationID), zap.Error(err))
	}
}
