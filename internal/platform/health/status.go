package health

import (
	"sync"

	"go.uber.org/zap"

	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

// State 定义了Redis缓存的健康状态
type State int

const (
	StateHealthy State = iota
	StateDegraded
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// statusManager 根据每次探测的结果推进状态机
type statusManager struct {
	mu             sync.RWMutex
	currentState   State
	lastKnownRunID string
}

func (sm *statusManager) state() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *statusManager) setInitial(state State, runID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.currentState = state
	sm.lastKnownRunID = runID
}

// assess 接收一次探测结果，返回是否需要重建缓存
func (sm *statusManager) assess(connected bool, runID string) (needsRebuild bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	log := applog.L()

	switch sm.currentState {
	case StateHealthy:
		if !connected {
			sm.currentState = StateDegraded
			log.Warn("健康检查: Redis连接丢失，系统状态 -> [降级]")
		} else if sm.lastKnownRunID != runID {
			sm.currentState = StateRebuilding
			needsRebuild = true
			log.Warn("健康检查: 检测到Redis重启，系统状态 -> [重建中]",
				zap.String("old_run_id", sm.lastKnownRunID), zap.String("new_run_id", runID))
		}
	case StateDegraded:
		if connected {
			// 启动时Redis就不可用的话 lastKnownRunID 为空，同样需要预热
			if sm.lastKnownRunID == "" || sm.lastKnownRunID != runID {
				sm.currentState = StateRebuilding
				needsRebuild = true
				log.Warn("健康检查: Redis已恢复但需要重建缓存，系统状态 -> [重建中]", zap.String("run_id", runID))
			} else {
				sm.currentState = StateHealthy
				log.Info("健康检查: Redis连接已恢复，系统状态 -> [健康]")
			}
		}
	case StateRebuilding:
		if !connected {
			sm.currentState = StateDegraded
			log.Warn("健康检查: 在缓存重建期间Redis连接再次丢失，系统状态 -> [降级]")
		} else {
			// 仍处于重建状态说明上次重建失败了
			needsRebuild = true
			log.Info("健康检查: 系统处于[重建中]状态，将再次尝试重建缓存")
		}
	}

	if connected {
		sm.lastKnownRunID = runID
	}
	return needsRebuild
}

// markRebuildComplete 在一次重建尝试之后调用。
// 重建期间Redis再次重启的话，这次重建无效，保持[重建中]。
func (sm *statusManager) markRebuildComplete(success bool, runIDAfter string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.currentState != StateRebuilding {
		return
	}
	if success && sm.lastKnownRunID != runIDAfter {
		applog.L().Error("健康检查错误: 缓存重建期间检测到Redis再次重启，重建无效",
			zap.String("old_run_id", sm.lastKnownRunID), zap.String("new_run_id", runIDAfter))
		sm.lastKnownRunID = runIDAfter
		return
	}
	if success {
		sm.currentState = StateHealthy
		applog.L().Info("健康检查: 缓存重建成功，系统状态 -> [健康]")
		return
	}
	applog.L().Error("健康检查错误: 缓存重建失败，系统状态保持 [重建中] 以待重试")
}
