package like

import (
	"sort"
	"sync"
)

// State 是客户端本地的点赞状态（ClientLikeState）。
// 它与服务端的 likes 计数（ServerLikeCount，来自最近一次拉取的快照）相互独立，
// 两者只在下一次整体重新加载列表时对齐。
type State struct {
	mu    sync.RWMutex
	liked map[int64]bool
}

func NewState() *State {
	return &State{liked: make(map[int64]bool)}
}

// IsLiked 未交互过的资料视为未点赞
func (s *State) IsLiked(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked[id]
}

// flip 翻转标记并返回新值
func (s *State) flip(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liked[id] = !s.liked[id]
	return s.liked[id]
}

// Liked 返回当前已点赞的资料id，升序
func (s *State) Liked() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.liked))
	for id, ok := range s.liked {
		if ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
