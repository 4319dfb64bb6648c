package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/internal/modules/notification/infrastructure/mq"
)

// AnalyzeEnvelope 分析任务消息体，随队列送达至少一次
type AnalyzeEnvelope struct {
	NotificationId string `json:"notification_id"`
	Text           string `json:"text"`
}

type kafkaTaskDispatcher struct {
	pub   mq.Publisher
	topic string
}

// NewKafkaTaskDispatcher 创建基于 Kafka 的任务分发器。
// 由进程入口构造并注入服务层，不做包级全局
func NewKafkaTaskDispatcher(pub mq.Publisher, topic string) (repository.TaskDispatcher, error) {
	topic = strings.TrimSpace(topic)
	if pub == nil {
		return nil, errors.New("publisher is nil")
	}
	if topic == "" {
		return nil, errors.New("analyze topic is empty")
	}
	return &kafkaTaskDispatcher{pub: pub, topic: topic}, nil
}

func (d *kafkaTaskDispatcher) Enqueue(ctx context.Context, notificationID string, text string) error {
	payload, err := json.Marshal(AnalyzeEnvelope{
		NotificationId: notificationID,
		Text:           text,
	})
	if err != nil {
		return err
	}

	// 以通知 id 为分区键，同一通知的重复投递落在同一分区
	_, err = d.pub.Publish(ctx, mq.Message{
		Topic: d.topic,
		Key:   []byte(notificationID),
		Value: payload,
		Headers: map[string]string{
			"notification_id": notificationID,
		},
	})
	return err
}
