package profile

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
)

type recorded struct {
	method string
	query  string
	body   string
}

func newStore(t *testing.T, handler http.HandlerFunc) (*HTTPRepository, *[]recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recorded{method: r.Method, query: r.URL.RawQuery, body: string(b)})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewHTTPRepository(srv.URL, remote.NewClientWith(srv.Client())), &calls
}

func TestHTTPRepository_FetchAll(t *testing.T) {
	repo, calls := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"profiles":[
			{"id":1,"name":"a","caste":"фейм","views":3,"photo_url":"http://x/1.jpg","created_at":"2025-01-02T03:04:05Z"},
			{"id":2,"name":"b","caste":"скамер","views":0},
			{"id":1,"name":"dup","caste":"фейм"}
		]}`)
	})

	got, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, int64(3), got[0].Views)
	assert.True(t, got[0].HasPhoto())
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), got[0].CreatedAt.Time)
	assert.True(t, got[1].CreatedAt.IsZero())
	assert.False(t, got[1].HasPhoto())
	assert.Equal(t, http.MethodGet, (*calls)[0].method)
}

func TestHTTPRepository_FetchAll_CreatedAtFormats(t *testing.T) {
	// 数据库 TIMESTAMP 列的 isoformat() 不带时区
	repo, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"profiles":[
			{"id":1,"name":"a","caste":"фейм","created_at":"2025-01-15T10:30:00.123456"},
			{"id":2,"name":"b","caste":"фейм","created_at":"2025-01-15T10:30:00"},
			{"id":3,"name":"c","caste":"фейм","created_at":"2025-01-15T10:30:00+03:00"},
			{"id":4,"name":"d","caste":"фейм","created_at":null},
			{"id":5,"name":"e","caste":"фейм","created_at":""}
		]}`)
	})

	got, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 0, 123456000, time.UTC), got[0].CreatedAt.Time)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC), got[1].CreatedAt.Time)
	assert.True(t, got[2].CreatedAt.Equal(time.Date(2025, 1, 15, 7, 30, 0, 0, time.UTC)))
	assert.True(t, got[3].CreatedAt.IsZero())
	assert.True(t, got[4].CreatedAt.IsZero())
}

func TestHTTPRepository_FetchAll_BadCreatedAt(t *testing.T) {
	repo, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"profiles":[{"id":1,"name":"a","caste":"фейм","created_at":"yesterday"}]}`)
	})
	_, err := repo.FetchAll(context.Background())
	assert.True(t, apperr.IsNetwork(err))
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Profile{ID: 1})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"created_at":null`)

	ts, err := ParseTimestamp("2025-01-15T10:30:00.5")
	require.NoError(t, err)
	b, err = json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-15T10:30:00.5Z"`, string(b))
}

func TestHTTPRepository_ToggleLike_StoreWithoutLikeRoute(t *testing.T) {
	// 没有点赞路由的存储把所有POST当作创建，缺少名字时返回400
	repo, calls := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Name and caste required"}`)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	err := repo.ToggleLike(context.Background(), 5, true)
	var netErr *apperr.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadRequest, netErr.Status)
	assert.Empty(t, (*calls)[0].body)
}

func TestHTTPRepository_FetchAll_Idempotent(t *testing.T) {
	repo, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"profiles":[{"id":1,"name":"a","caste":"фейм"},{"id":2,"name":"b","caste":"новичок"}]}`)
	})

	first, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	second, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHTTPRepository_FetchAll_MissingKey(t *testing.T) {
	repo, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	got, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPRepository_FetchAll_Errors(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		repo, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>`)
		})
		_, err := repo.FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, apperr.IsNetwork(err))
	})

	t.Run("status", func(t *testing.T) {
		repo, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := repo.FetchAll(context.Background())
		var ne *apperr.NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, http.StatusInternalServerError, ne.Status)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		repo := NewHTTPRepository(srv.URL, remote.NewClient(0))
		_, err := repo.FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, apperr.IsNetwork(err))
	})
}

func TestHTTPRepository_Mutations(t *testing.T) {
	repo, calls := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.RawQuery == "" {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":42,"message":"Profile created"}`)
			return
		}
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	})
	ctx := context.Background()

	require.NoError(t, repo.IncrementView(ctx, 5))
	require.NoError(t, repo.ToggleLike(ctx, 5, true))
	require.NoError(t, repo.ToggleLike(ctx, 5, false))

	fields := Fields{Name: "n", Username: "@n", Caste: CasteFame}
	id, err := repo.CreateProfile(ctx, fields)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NoError(t, repo.UpdateProfile(ctx, 42, fields))
	require.NoError(t, repo.DeleteProfile(ctx, 42))

	got := *calls
	require.Len(t, got, 6)
	assert.Equal(t, recorded{method: http.MethodPut, query: "id=5"}, got[0])
	assert.Equal(t, "action=like&id=5", got[1].query)
	assert.Equal(t, "action=unlike&id=5", got[2].query)

	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(got[3].body), &sent))
	assert.Equal(t, map[string]string{
		"name": "n", "username": "@n", "description": "", "photo_url": "", "caste": "фейм",
	}, sent)

	assert.Equal(t, http.MethodPatch, got[4].method)
	assert.Equal(t, "id=42", got[4].query)
	assert.Equal(t, recorded{method: http.MethodDelete, query: "id=42"}, got[5])
}
