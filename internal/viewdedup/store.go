package viewdedup

import (
	"context"
	"sync"
)

// KeyValueStore 是某一个客户端的持久化键值存储，对应浏览器里的 localStorage。
type KeyValueStore interface {
	// Get 返回键对应的值，以及键是否存在
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Backend 为每个客户端分配一个独立命名空间的KeyValueStore
type Backend interface {
	ForClient(clientID string) KeyValueStore
}

// MemoryBackend 是进程内的实现，用于测试和没有Redis/SQLite的场景
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (b *MemoryBackend) ForClient(clientID string) KeyValueStore {
	return &memoryStore{backend: b, clientID: clientID}
}

// Clear 清空一个客户端的全部键，相当于用户清理了浏览器存储
func (b *MemoryBackend) Clear(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, clientID)
}

type memoryStore struct {
	backend  *MemoryBackend
	clientID string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	v, ok := s.backend.data[s.clientID][key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	m, ok := s.backend.data[s.clientID]
	if !ok {
		m = make(map[string]string)
		s.backend.data[s.clientID] = m
	}
	m[key] = value
	return nil
}
