package viewdedup

import (
	"context"
	"fmt"
	"strconv"
)

const (
	keyPrefix   = "viewed_profile_"
	viewedValue = "true"
)

// Key 返回资料id对应的去重键，例如 viewed_profile_5
func Key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Tracker 记录一个客户端已经为哪些资料增加过浏览数。
// 标记一旦写入就不会被删除，只有清空客户端存储才会重置。
type Tracker struct {
	store KeyValueStore
}

func NewTracker(store KeyValueStore) *Tracker {
	return &Tracker{store: store}
}

// HasViewed 当且仅当此前已经记录过该资料的有效浏览时返回true
func (t *Tracker) HasViewed(ctx context.Context, id int64) (bool, error) {
	_, ok, err := t.store.Get(ctx, Key(id))
	if err != nil {
		return false, fmt.Errorf("无法查询资料 %d 的浏览标记: %w", id, err)
	}
	return ok, nil
}

// MarkViewed 记录该资料已被浏览
func (t *Tracker) MarkViewed(ctx context.Context, id int64) error {
	if err := t.store.Set(ctx, Key(id), viewedValue); err != nil {
		return fmt.Errorf("无法写入资料 %d 的浏览标记: %w", id, err)
	}
	return nil
}
