package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"NotiFlow/internal/config"
	"NotiFlow/internal/initial"
	"NotiFlow/internal/modules/notification/infrastructure/analyzer"
	cacheInfra "NotiFlow/internal/modules/notification/infrastructure/cache"
	"NotiFlow/internal/modules/notification/infrastructure/mq/kafka"
	"NotiFlow/internal/modules/notification/infrastructure/persistence"
	"NotiFlow/internal/modules/notification/infrastructure/queue"
	"NotiFlow/pkg/zlog"
)

func main() {
	conf := config.GetConfig()
	zlog.Init(conf.LogConfig.LogPath)
	defer zlog.Sync()

	db, err := initial.InitGorm(conf)
	if err != nil {
		zlog.Fatal("初始化数据库失败: " + err.Error())
		return
	}
	rdb := initial.InitRedis(conf)

	notificationCache := cacheInfra.NewNotificationCache(rdb)
	cacheTTL := time.Duration(conf.RedisConfig.CacheTTLSeconds) * time.Second
	notificationRepo := persistence.NewNotificationRepository(db, notificationCache, cacheTTL)

	// topic 预建失败只告警，集群开启自动建表时消费仍能继续
	if err := kafka.EnsureTopic(kafka.TopicAdminConfig{
		Brokers:  conf.KafkaConfig.Brokers,
		ClientID: conf.KafkaConfig.ClientID,
	}, conf.KafkaConfig.AnalyzeTopic, conf.KafkaConfig.Partitions, conf.KafkaConfig.Replication); err != nil {
		zlog.Warn("预建 Kafka topic 失败", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	textAnalyzer, err := analyzer.New(ctx, &conf.AnalyzerConfig)
	if err != nil {
		zlog.Fatal("初始化分类器失败: " + err.Error())
		return
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  conf.KafkaConfig.Brokers,
		GroupID:  conf.KafkaConfig.ConsumerGroupID,
		Topics:   []string{conf.KafkaConfig.AnalyzeTopic},
		ClientID: conf.KafkaConfig.ClientID,
	})
	if err != nil {
		zlog.Fatal("初始化 Kafka 消费组失败: " + err.Error())
		return
	}
	defer consumer.Close()
	if rdb != nil {
		defer rdb.Close()
	}

	worker := queue.NewAnalyzeConsumerWorker(consumer, notificationRepo, textAnalyzer)

	done := make(chan error, 1)
	go func() {
		zlog.Info("分析 worker 已启动",
			zap.String("topic", conf.KafkaConfig.AnalyzeTopic),
			zap.String("group", conf.KafkaConfig.ConsumerGroupID))
		done <- worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zlog.Info("正在关闭 worker...")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			zlog.Error("worker 异常退出", zap.Error(err))
		}
	}
	zlog.Info("worker 已关闭")
}
