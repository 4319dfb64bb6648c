package initial

import (
	"context"
	"fmt"
	"time"

	"NotiFlow/internal/config"
	"NotiFlow/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
)

// InitRedis 建立 Redis 连接。未配置或连接失败时返回 nil，
// 缓存层把 nil 客户端当作缓存关闭处理（缓存仅是优化，不是正确性依赖）
func InitRedis(conf *config.Config) *goredis.Client {
	host := conf.RedisConfig.Host
	port := conf.RedisConfig.Port

	if host == "" {
		zlog.Info("Redis 未配置，跳过初始化")
		return nil
	}

	if port == 0 {
		port = 6379
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	zlog.Info(fmt.Sprintf("Redis connecting: %s", addr))

	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     conf.RedisConfig.Password,
		DB:           conf.RedisConfig.DB,
		PoolSize:     conf.RedisConfig.PoolSize,
		MinIdleConns: conf.RedisConfig.MinIdleConns,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		zlog.Error(fmt.Sprintf("Redis 连接失败: %v", err))
		_ = client.Close()
		return nil
	}

	zlog.Info("Redis 连接成功")
	return client
}
