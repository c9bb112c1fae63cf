package database

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/config"
	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

// RDB 是一个全局的Redis客户端实例，供项目其他部分使用
var RDB *redis.Client

// InitRedis 初始化与Redis数据库的连接
func InitRedis(ctx context.Context, cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	if err := RDB.Ping(ctx).Err(); err != nil {
		// 浏览去重在Redis不可用时会退回到SQLite，所以这里只标记为不健康
		applog.L().Warn("无法连接到Redis，以降级模式启动", zap.Error(err))
		UpdateStatus(false)
		return
	}

	applog.L().Info("Redis 连接成功", zap.String("addr", cfg.Address))
}
