package repository

import (
	"context"

	"NotiFlow/internal/modules/notification/domain/entity"
)

// ListFilter 列表查询条件。指针字段为 nil 表示不过滤；
// 必须先过滤后分页
type ListFilter struct {
	UserId           *string
	Category         *string
	ProcessingStatus *string
	Limit            int
	Offset           int
}

// NotificationRepository 通知仓储接口。持久化状态的唯一写入方。
// 读路径上记录不存在返回 (nil, nil)，不是错误
type NotificationRepository interface {
	// Create 持久化新通知，返回落库后的实体
	Create(ctx context.Context, notif *entity.Notification) (*entity.Notification, error)

	// GetByID 按通知 uuid 查询，先查缓存，未命中回源并回填
	GetByID(ctx context.Context, notificationID string) (*entity.Notification, error)

	// Update 原子应用部分字段更新，无论成败都会失效缓存。
	// 无匹配行时返回 (nil, nil)
	Update(ctx context.Context, notificationID string, fields map[string]interface{}) (*entity.Notification, error)

	// List 按过滤条件分页查询，按插入顺序稳定排序
	List(ctx context.Context, filter ListFilter) ([]*entity.Notification, error)

	// MarkRead 无条件将 read_at 置为当前时间（幂等覆盖），失效缓存
	MarkRead(ctx context.Context, notificationID string) (*entity.Notification, error)
}
