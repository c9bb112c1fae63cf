package startup

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/SlpAus/fame-list-backend/internal/platform/database"
	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/viewdedup"
)

// Loader 是启动时需要执行一次初始加载的列表控制器
type Loader interface {
	Load(ctx context.Context)
}

// InitializeApplication 是应用启动时执行的总入口。
// 数据库迁移/缓存预热 与 资料列表的首次加载 互不依赖，并发执行。
// 首次加载失败不会阻止启动，控制器会停在 LoadFailed。
func InitializeApplication(ctx context.Context, db *gorm.DB, rdb *redis.Client, listing Loader) error {
	applog.L().Info("开始应用初始化...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !database.IsRedisHealthy() {
			// Redis不可用时只迁移，健康检查器会在Redis恢复后预热
			return viewdedup.MigrateDB(db)
		}
		return viewdedup.PrimeCachedDB(gctx, rdb, db)
	})
	g.Go(func() error {
		listing.Load(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("应用初始化失败: %w", err)
	}

	applog.L().Info("应用初始化完成！")
	return nil
}

// RebuildCache 在运行时热重建Redis缓存，由健康检查器在Redis重启后调用
func RebuildCache(db *gorm.DB, rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		applog.L().Info("开始缓存热重建...")
		return viewdedup.WarmupCache(ctx, rdb, db)
	}
}
