package http

import (
	"fmt"
	"time"

	"NotiFlow/internal/config"
	"NotiFlow/internal/initial"
	"NotiFlow/internal/modules/notification/application/service"
	cacheInfra "NotiFlow/internal/modules/notification/infrastructure/cache"
	"NotiFlow/internal/modules/notification/infrastructure/mq/kafka"
	"NotiFlow/internal/modules/notification/infrastructure/persistence"
	"NotiFlow/internal/modules/notification/infrastructure/queue"
	notificationHandler "NotiFlow/internal/modules/notification/interface/http"
	"NotiFlow/pkg/ssl"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewEngine 组装 HTTP 进程的全部依赖并注册路由。
// 返回的 cleanup 负责释放 Kafka 生产者等资源
func NewEngine(conf *config.Config) (*gin.Engine, func(), error) {
	db, err := initial.InitGorm(conf)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	rdb := initial.InitRedis(conf)

	notificationCache := cacheInfra.NewNotificationCache(rdb)
	cacheTTL := time.Duration(conf.RedisConfig.CacheTTLSeconds) * time.Second
	notificationRepo := persistence.NewNotificationRepository(db, notificationCache, cacheTTL)

	pub, err := kafka.NewSaramaPublisher(kafka.PublisherConfig{
		Brokers:  conf.KafkaConfig.Brokers,
		ClientID: conf.KafkaConfig.ClientID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("初始化 Kafka 生产者失败: %w", err)
	}
	dispatcher, err := queue.NewKafkaTaskDispatcher(pub, conf.KafkaConfig.AnalyzeTopic)
	if err != nil {
		return nil, nil, err
	}

	notificationSvc := service.NewNotificationService(notificationRepo, dispatcher)
	notificationH := notificationHandler.NewNotificationHandler(notificationSvc)

	ge := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	ge.Use(cors.New(corsConfig))
	ge.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))

	ge.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	v1 := ge.Group("/api/v1")
	v1.POST("/notifications", notificationH.CreateNotification)
	v1.GET("/notifications", notificationH.ListNotifications)
	v1.GET("/notifications/:id", notificationH.GetNotification)
	v1.PATCH("/notifications/:id/read", notificationH.MarkNotificationRead)
	v1.GET("/notifications/:id/status", notificationH.GetNotificationStatus)

	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = pub.Close()
	}
	return ge, cleanup, nil
}
