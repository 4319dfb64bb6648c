package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"NotiFlow/internal/modules/notification/domain/entity"
	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/internal/modules/notification/infrastructure/mq"
	"NotiFlow/pkg/zlog"

	"go.uber.org/zap"
)

// AnalyzeConsumerWorker 消费分析任务，推进通知状态机：
// pending → processing → {completed, failed}。
// 步骤 1 的 pending 检查是唯一的重复投递防线，它与后续写入不构成原子操作：
// 同一消息的两次并发投递可能都观察到 pending 并各自执行分析，
// 终态写入以后写者为准。已知竞态，修复需要 CAS 语义，不要只在这里加锁
type AnalyzeConsumerWorker struct {
	consumer mq.Consumer
	repo     repository.NotificationRepository
	analyzer repository.TextAnalyzer
}

func NewAnalyzeConsumerWorker(consumer mq.Consumer, repo repository.NotificationRepository, analyzer repository.TextAnalyzer) *AnalyzeConsumerWorker {
	return &AnalyzeConsumerWorker{
		consumer: consumer,
		repo:     repo,
		analyzer: analyzer,
	}
}

func (w *AnalyzeConsumerWorker) Run(ctx context.Context) error {
	if w == nil || w.consumer == nil {
		return errors.New("consumer is nil")
	}
	if w.repo == nil {
		return errors.New("notification repo is nil")
	}
	if w.analyzer == nil {
		return errors.New("analyzer is nil")
	}
	return w.consumer.Run(ctx, w)
}

func (w *AnalyzeConsumerWorker) Handle(ctx context.Context, msg mq.Message) error {
	var env AnalyzeEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		zlog.Warn("analyze worker invalid envelope", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}
	id := strings.TrimSpace(env.NotificationId)
	if id == "" {
		zlog.Warn("analyze worker missing notification_id", zap.String("topic", msg.Topic))
		return nil
	}

	// 步骤 1：加载并校验状态。仓储错误返回非 nil，交给队列重投
	notif, err := w.repo.GetByID(ctx, id)
	if err != nil {
		zlog.Warn("analyze worker get notification failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}
	if notif == nil || !entity.CanTransition(notif.ProcessingStatus, entity.StatusProcessing) {
		// 不存在或已被处理过，丢弃消息（幂等空操作）
		zlog.Info("analyze worker notification already done or not found", zap.String("notification_id", id))
		return nil
	}

	// 步骤 2：推进到 processing
	if _, err := w.repo.Update(ctx, id, map[string]interface{}{
		"processing_status": entity.StatusProcessing,
	}); err != nil {
		zlog.Warn("analyze worker mark processing failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}

	// 步骤 3：调用分类器
	result, clsErr := w.analyzer.Classify(ctx, env.Text)
	if clsErr != nil {
		// 分析失败是业务终态而非系统错误：写 failed 并返回 nil，
		// 不触发传输层重投
		if _, err := w.repo.Update(ctx, id, map[string]interface{}{
			"processing_status": entity.StatusFailed,
		}); err != nil {
			zlog.Warn("analyze worker mark failed failed", zap.String("notification_id", id), zap.Error(err))
			return err
		}
		zlog.Warn("analyze worker classify failed",
			zap.String("notification_id", id),
			zap.Error(clsErr),
		)
		return nil
	}

	// 步骤 4：一次原子写入分类结果与终态。keywords 仅记日志，不落库
	if _, err := w.repo.Update(ctx, id, map[string]interface{}{
		"category":          result.Category,
		"confidence":        result.Confidence,
		"processing_status": entity.StatusCompleted,
	}); err != nil {
		zlog.Warn("analyze worker write result failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}

	zlog.Info("analyze worker completed",
		zap.String("notification_id", id),
		zap.String("category", result.Category),
		zap.Float64("confidence", result.Confidence),
		zap.Strings("keywords", result.Keywords),
	)
	return nil
}
