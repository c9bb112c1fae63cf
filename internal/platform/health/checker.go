package health

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/database"
	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/pkg/lifecycle"
)

const pingTimeout = 2 * time.Second

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// RunIDFunc 返回Redis当前的 run_id，Redis重启后它会改变
type RunIDFunc func(ctx context.Context) (string, error)

// RedisRunID 从 INFO server 中提取 run_id
func RedisRunID(rdb *redis.Client) RunIDFunc {
	return func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		info, err := rdb.Info(ctx, "server").Result()
		if err != nil {
			return "", err
		}
		matches := runIDPattern.FindStringSubmatch(info)
		if len(matches) < 2 {
			return "", errors.New("无法在Redis INFO中找到run_id")
		}
		return matches[1], nil
	}
}

// Checker 定期探测Redis。检测到Redis重启（或从启动时的不可用中恢复）时，
// 用 rebuild 从SQLite重新预热浏览去重标记。
type Checker struct {
	runID   RunIDFunc
	rebuild func(ctx context.Context) error
	status  statusManager
}

func NewChecker(runID RunIDFunc, rebuild func(ctx context.Context) error) *Checker {
	return &Checker{runID: runID, rebuild: rebuild}
}

// InitializeRunID 在启动时执行一次。Redis不可用时以降级状态启动，不会panic。
func (c *Checker) InitializeRunID(ctx context.Context) {
	runID, err := c.runID(ctx)
	if err != nil {
		applog.L().Warn("无法在启动时获取Redis Run ID，以降级模式启动", zap.Error(err))
		c.status.setInitial(StateDegraded, "")
		database.UpdateStatus(false)
		return
	}
	c.status.setInitial(StateHealthy, runID)
	database.UpdateStatus(true)
	applog.L().Info("获取初始Redis Run ID成功", zap.String("run_id", runID))
}

// State 返回当前缓存健康状态
func (c *Checker) State() State {
	return c.status.state()
}

// PerformCheck 执行一次完整的健康检查和可能的修复操作
func (c *Checker) PerformCheck(ctx context.Context) {
	runID, err := c.runID(ctx)
	connected := err == nil

	if c.status.assess(connected, runID) {
		applog.L().Info("健康检查: 正在触发缓存热重建...")
		rebuildErr := c.rebuild(ctx)
		if rebuildErr != nil {
			applog.L().Error("健康检查错误: 缓存热重建失败", zap.Error(rebuildErr))
		}
		// 重建后再次检查run_id以确认原子性
		after, afterErr := c.runID(ctx)
		c.status.markRebuildComplete(rebuildErr == nil && afterErr == nil, after)
	}

	database.UpdateStatus(c.status.state() == StateHealthy)
}

// Run 按固定间隔执行健康检查，直到生命周期句柄被取消
func (c *Checker) Run(handle *lifecycle.Handle, interval time.Duration) {
	defer handle.Close()
	applog.L().Info("Redis健康检查器已启动", zap.Duration("interval", interval))
	for {
		if err := handle.Sleep(interval); err != nil {
			return
		}
		c.PerformCheck(handle.Ctx())
	}
}
