package complaint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
)

func newLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLimiter(rdb, func() bool { return true }, limit), mr
}

func TestLimiter_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 2)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		res, err := l.Acquire(ctx, "10.0.0.1")
		require.NoError(t, err)
		res.Commit()
	}
	_, err := l.Acquire(ctx, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrRateLimited)

	// 其他IP不受影响
	_, err = l.Acquire(ctx, "10.0.0.2")
	assert.NoError(t, err)

	// 窗口滑过之后恢复
	now = now.Add(window + time.Second)
	_, err = l.Acquire(ctx, "10.0.0.1")
	assert.NoError(t, err)
}

func TestLimiter_RollbackFreesSlot(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 1)

	res, err := l.Acquire(ctx, "10.0.0.1")
	require.NoError(t, err)
	res.RollbackUnlessCommitted(ctx)

	res, err = l.Acquire(ctx, "10.0.0.1")
	require.NoError(t, err)
	res.Commit()
	res.RollbackUnlessCommitted(ctx)

	_, err = l.Acquire(ctx, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
}

func TestLimiter_Disabled(t *testing.T) {
	ctx := context.Background()
	var nilLimiter *Limiter
	res, err := nilLimiter.Acquire(ctx, "10.0.0.1")
	assert.NoError(t, err)
	assert.Nil(t, res)
	res.Commit()
	res.RollbackUnlessCommitted(ctx)

	l, _ := newLimiter(t, 1)
	l.healthy = func() bool { return false }
	for i := 0; i < 3; i++ {
		_, err := l.Acquire(ctx, "10.0.0.1")
		assert.NoError(t, err)
	}
}

func TestHandler_RateLimitAndCompensation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var status atomic.Int32
	status.Store(http.StatusInternalServerError)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	l, _ := newLimiter(t, 1)
	r := gin.New()
	r.POST("/api/complaints", NewHandler(NewService(srv.URL, remote.NewClientWith(srv.Client())), l).Submit)

	post := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/complaints",
			strings.NewReader(`{"telegram":"@me","targetUser":"@t","reason":"r"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w.Code
	}

	// 转发失败不占用名额
	assert.Equal(t, http.StatusBadGateway, post())
	status.Store(http.StatusOK)
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}
