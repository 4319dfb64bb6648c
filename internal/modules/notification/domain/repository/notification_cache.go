package repository

import (
	"context"
	"time"

	"NotiFlow/internal/modules/notification/domain/entity"
)

// NotificationCache 按通知 uuid 缓存实体，读穿透写失效。
// 缓存只是优化：任何后端错误降级为未命中/空操作，绝不向上传播
type NotificationCache interface {
	// Get 返回缓存实体，未命中或后端出错返回 nil
	Get(ctx context.Context, notificationID string) *entity.Notification

	// Set 写入缓存并设置 TTL，失败静默
	Set(ctx context.Context, notif *entity.Notification, ttl time.Duration)

	// Delete 删除缓存项，失败静默
	Delete(ctx context.Context, notificationID string)
}
