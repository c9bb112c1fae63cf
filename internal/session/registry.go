package session

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/user"
	"github.com/SlpAus/fame-list-backend/pkg/lifecycle"
)

const contextKey = "session"

// Registry 按客户端ID保存会话
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session), now: time.Now}
}

// Get 返回客户端的会话，不存在时创建
func (r *Registry) Get(clientID string) *Session {
	now := r.now()

	r.mu.RLock()
	s, ok := r.sessions[clientID]
	r.mu.RUnlock()
	if ok {
		s.touch(now)
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// 获取写锁后再次检查，防止并发创建
	if s, ok := r.sessions[clientID]; ok {
		s.touch(now)
		return s
	}
	s = newSession(clientID, now)
	r.sessions[clientID] = s
	return s
}

// Len 返回当前会话数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep 删除空闲超过 maxIdle 的会话，返回删除数量
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper 定期清理空闲会话，直到生命周期句柄被取消
func (r *Registry) RunSweeper(handle *lifecycle.Handle, interval, maxIdle time.Duration) {
	defer handle.Close()
	for {
		if err := handle.Sleep(interval); err != nil {
			return
		}
		if n := r.Sweep(maxIdle); n > 0 {
			logger.L().Debug("清理空闲会话", zap.Int("removed", n))
		}
	}
}

// Middleware 把当前访客的会话放入gin上下文。必须在 user.EnsureClientMiddleware 之后使用。
func Middleware(r *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString(user.ClientIDKey)
		if clientID != "" {
			c.Set(contextKey, r.Get(clientID))
		}
		c.Next()
	}
}

// FromContext 返回当前请求的会话，没有访客身份时返回nil
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
