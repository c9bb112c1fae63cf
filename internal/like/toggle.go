package like

import (
	"context"
	"fmt"

	"github.com/SlpAus/fame-list-backend/internal/platform/metrics"
)

// Remote 是点赞需要的远程操作，由 profile.Repository 实现
type Remote interface {
	ToggleLike(ctx context.Context, id int64, liked bool) error
}

// Toggler 翻转本地点赞状态并通知远程存储
type Toggler struct {
	remote Remote
}

func NewToggler(remote Remote) *Toggler {
	return &Toggler{remote: remote}
}

// Toggle 翻转 state 中 id 的点赞标记。
// false→true 请求远程加一，true→false 请求远程减一。
// 本地状态是乐观的：远程失败时标记依然保持翻转后的值，错误返回给调用方记录和提示。
// 展示的点赞数不在本地增减，只在下一次重新加载后更新。
func (t *Toggler) Toggle(ctx context.Context, state *State, id int64) (bool, error) {
	liked := state.flip(id)
	err := t.remote.ToggleLike(ctx, id, liked)
	metrics.ObserveLike(liked, err)
	if err != nil {
		return liked, fmt.Errorf("无法同步资料 %d 的点赞状态: %w", id, err)
	}
	return liked, nil
}
