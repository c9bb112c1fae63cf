package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager 协调一组后台任务的停止。
// 它由上层模块（shutdown）持有，每个后台任务通过 Go 注册并获得一个 Handle。
type Manager struct {
	name string
	log  *zap.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	running map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 创建一个生命周期管理器，log 为nil时不输出日志
func NewManager(name string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		name:    name,
		log:     log.With(zap.String("manager", name)),
		running: make(map[string]struct{}),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle 为一个任务注册句柄。同名任务在完成前不能重复注册。
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.running[name]; exists {
		return nil, fmt.Errorf("生命周期管理器 %s: 任务 '%s' 已被注册", m.name, name)
	}
	m.running[name] = struct{}{}
	m.wg.Add(1)
	m.log.Debug("任务已注册", zap.String("service", name))

	var once sync.Once
	return &Handle{
		ctx: m.ctx,
		Close: func() {
			once.Do(func() {
				m.mu.Lock()
				delete(m.running, name)
				m.mu.Unlock()
				m.wg.Done()
			})
		},
	}, nil
}

// Go 注册任务并在新的goroutine中运行。fn 返回后句柄自动关闭，
// 所以 fn 自己调用 handle.Close 也是安全的。
func (m *Manager) Go(name string, fn func(h *Handle)) error {
	h, err := m.NewServiceHandle(name)
	if err != nil {
		return err
	}
	go func() {
		defer h.Close()
		fn(h)
	}()
	return nil
}

// Shutdown 广播停止信号
func (m *Manager) Shutdown() {
	m.log.Info("广播停机信号")
	m.cancel()
}

// WaitWithTimeout 等待所有任务完成。超时返回仍在运行的任务名（已排序）。
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return m.remaining()
	}
}

func (m *Manager) remaining() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.running))
	for name := range m.running {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
