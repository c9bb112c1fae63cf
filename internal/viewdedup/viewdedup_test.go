package viewdedup

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SlpAus/fame-list-backend/internal/platform/database"
	"github.com/SlpAus/fame-list-backend/internal/platform/metadata"
)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, MigrateDB(db))
	return db
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func alwaysHealthy() bool { return true }

func TestKey(t *testing.T) {
	assert.Equal(t, "viewed_profile_5", Key(5))
}

func TestTracker_MarkThenHasViewed(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	tr := NewTracker(backend.ForClient("client-a"))

	viewed, err := tr.HasViewed(ctx, 5)
	require.NoError(t, err)
	assert.False(t, viewed)

	require.NoError(t, tr.MarkViewed(ctx, 5))

	viewed, err = tr.HasViewed(ctx, 5)
	require.NoError(t, err)
	assert.True(t, viewed)

	v, ok, err := backend.ForClient("client-a").Get(ctx, "viewed_profile_5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	// 其他客户端不受影响
	other, err := NewTracker(backend.ForClient("client-b")).HasViewed(ctx, 5)
	require.NoError(t, err)
	assert.False(t, other)

	// 清空客户端存储后标记消失
	backend.Clear("client-a")
	viewed, err = tr.HasViewed(ctx, 5)
	require.NoError(t, err)
	assert.False(t, viewed)
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	store := NewRedisBackend(rdb).ForClient("c1")

	_, ok, err := store.Get(ctx, Key(1))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, Key(1), "true"))

	v, ok, err := store.Get(ctx, Key(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	assert.Equal(t, "true", mr.HGet("viewdedup:client:c1", "viewed_profile_1"))
	members, err := mr.Members(DirtySetKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, members)
}

func TestSQLBackend(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	store := NewSQLBackend(db).ForClient("c1")

	_, ok, err := store.Get(ctx, Key(7))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, Key(7), "true"))
	require.NoError(t, store.Set(ctx, Key(7), "true"))

	v, ok, err := store.Get(ctx, Key(7))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	var count int64
	require.NoError(t, db.Model(&ViewMark{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLayeredBackend_FallsBackToSQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	_, rdb := newRedis(t)

	healthy := true
	backend := NewLayeredBackend(NewRedisBackend(rdb), NewSQLBackend(db), func() bool { return healthy })

	// 只存在于SQLite中的标记也能被读到
	require.NoError(t, NewSQLBackend(db).ForClient("c1").Set(ctx, Key(1), "true"))
	viewed, err := NewTracker(backend.ForClient("c1")).HasViewed(ctx, 1)
	require.NoError(t, err)
	assert.True(t, viewed)

	// Redis不健康时写入直接进入SQLite
	healthy = false
	require.NoError(t, NewTracker(backend.ForClient("c1")).MarkViewed(ctx, 2))
	_, ok, err := NewSQLBackend(db).ForClient("c1").Get(ctx, Key(2))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLayeredBackend_MarksSurviveRedisRestart(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	mr, rdb := newRedis(t)
	backend := NewLayeredBackend(NewRedisBackend(rdb), NewSQLBackend(db), alwaysHealthy)

	tracker := NewTracker(backend.ForClient("c1"))
	require.NoError(t, tracker.MarkViewed(ctx, 3))

	// 还没有落盘就重启Redis
	mr.FlushAll()
	viewed, err := tracker.HasViewed(ctx, 3)
	require.NoError(t, err)
	assert.True(t, viewed)

	_, ok, err := NewSQLBackend(db).ForClient("c1").Get(ctx, Key(3))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLayeredBackend_RedisOnlyWriteStillSucceeds(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	_, rdb := newRedis(t)
	backend := NewLayeredBackend(NewRedisBackend(rdb), NewSQLBackend(db), alwaysHealthy)

	// SQLite不可用时标记只进入Redis，之后由Flusher补写
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	tracker := NewTracker(backend.ForClient("c1"))
	require.NoError(t, tracker.MarkViewed(ctx, 4))
	viewed, err := tracker.HasViewed(ctx, 4)
	require.NoError(t, err)
	assert.True(t, viewed)
}

func TestFlusher_FlushAndWarmup(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	mr, rdb := newRedis(t)

	hot := NewRedisBackend(rdb)
	require.NoError(t, NewTracker(hot.ForClient("c1")).MarkViewed(ctx, 1))
	require.NoError(t, NewTracker(hot.ForClient("c1")).MarkViewed(ctx, 2))
	require.NoError(t, NewTracker(hot.ForClient("c2")).MarkViewed(ctx, 1))

	f := NewFlusher(rdb, db, alwaysHealthy)
	n, err := f.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists(DirtySetKey))
	assert.False(t, mr.Exists(ProcessingDirtySetKey))

	var count int64
	require.NoError(t, db.Model(&ViewMark{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	flushedAt, err := metadata.GetTime(db, metadata.LastFlushAtKey)
	require.NoError(t, err)
	assert.False(t, flushedAt.IsZero())

	// 没有新写入时落盘是空操作
	n, err = f.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// 模拟Redis重启后从SQLite预热
	mr.FlushAll()
	require.NoError(t, WarmupCache(ctx, rdb, db))
	viewed, err := NewTracker(hot.ForClient("c1")).HasViewed(ctx, 2)
	require.NoError(t, err)
	assert.True(t, viewed)
	viewed, err = NewTracker(hot.ForClient("c2")).HasViewed(ctx, 2)
	require.NoError(t, err)
	assert.False(t, viewed)
}
