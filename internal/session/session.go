package session

import (
	"sync"
	"time"

	"github.com/SlpAus/fame-list-backend/internal/like"
	"github.com/SlpAus/fame-list-backend/internal/profile"
)

// Session 是一个访客在本进程中的会话上下文，显式传递给各个处理器，
// 替代原先散落的全局状态。进程重启后会话丢失，浏览去重标记不受影响。
type Session struct {
	ClientID string
	Likes    *like.State

	mu       sync.Mutex
	admin    bool
	caste    profile.Caste
	lastSeen time.Time
}

func newSession(clientID string, now time.Time) *Session {
	return &Session{
		ClientID: clientID,
		Likes:    like.NewState(),
		caste:    profile.CasteAll,
		lastSeen: now,
	}
}

// IsAdmin 返回管理入口是否已解锁
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

func (s *Session) SetAdmin(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = v
}

// Caste 返回最近一次选择的等级筛选
func (s *Session) Caste() profile.Caste {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caste
}

func (s *Session) SetCaste(c profile.Caste) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caste = c
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
