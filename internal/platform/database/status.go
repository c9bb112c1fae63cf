package database

import (
	"sync"

	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

// statusManager 保存对外公布的Redis可用状态。
// run_id 的跟踪和重建判断由 health 包负责，这里只存结论。
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

// 全局的状态管理器实例
var globalStatus = &statusManager{
	isRedisHealthy: true, // 默认启动时是健康的
}

// IsRedisHealthy 返回当前Redis的健康状态。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// UpdateStatus 用于线程安全地更新健康状态。
func UpdateStatus(isHealthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	// 只有当状态发生变化时才打印日志
	if globalStatus.isRedisHealthy == isHealthy {
		return
	}
	globalStatus.isRedisHealthy = isHealthy
	if isHealthy {
		applog.L().Info("健康检查: Redis服务状态已更新为 [可用]")
	} else {
		applog.L().Warn("健康检查: Redis服务状态已更新为 [不可用]")
	}
}
