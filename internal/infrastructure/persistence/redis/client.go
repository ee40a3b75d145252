package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/playchat/internal/infrastructure/config"
)

// clientName 在CLIENT LIST中标识本服务的连接
const clientName = "playchat-api"

// NewClient 创建Token黑名单使用的Redis客户端
// 启动时Ping一次，Redis不可用时登出无法生效，直接失败
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(clientOptions(cfg.Redis))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout(cfg.Redis))
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis(%s)失败: %w", cfg.Redis.Addr(), err)
	}

	slog.Info("Redis已连接", "addr", cfg.Redis.Addr(), "db", cfg.Redis.DB, "pool_size", cfg.Redis.PoolSize)
	return client, nil
}

func clientOptions(rc config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         rc.Addr(),
		ClientName:   clientName,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}
}

// pingTimeout 建连加一次往返，未配置时用5秒
func pingTimeout(rc config.RedisConfig) time.Duration {
	if rc.DialTimeout <= 0 || rc.ReadTimeout <= 0 {
		return 5 * time.Second
	}
	return rc.DialTimeout + rc.ReadTimeout
}
