package repository

import "context"

// TaskDispatcher 把 (通知id, 正文) 投递到持久化队列，至少一次送达。
// 调用方视角 fire-and-forget：入队失败只记日志，不回滚通知创建
type TaskDispatcher interface {
	Enqueue(ctx context.Context, notificationID string, text string) error
}
