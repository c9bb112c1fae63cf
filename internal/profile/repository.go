package profile

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
)

// Repository 是远程资料存储的访问层。每个操作都是一次网络调用，不做批处理或缓存。
type Repository interface {
	// FetchAll 拉取完整的资料集合，没有分页和服务端筛选
	FetchAll(ctx context.Context) ([]Profile, error)
	// IncrementView 请求远程存储把 views 加一。服务端不保证幂等。
	IncrementView(ctx context.Context, id int64) error
	// ToggleLike liked=true 请求点赞加一，liked=false 请求减一
	ToggleLike(ctx context.Context, id int64, liked bool) error
	CreateProfile(ctx context.Context, fields Fields) (int64, error)
	UpdateProfile(ctx context.Context, id int64, fields Fields) error
	DeleteProfile(ctx context.Context, id int64) error
}

// HTTPRepository 通过托管HTTP函数实现Repository
type HTTPRepository struct {
	baseURL string
	client  *remote.Client
}

// NewHTTPRepository 创建一个指向 baseURL 的仓库
func NewHTTPRepository(baseURL string, client *remote.Client) *HTTPRepository {
	return &HTTPRepository{baseURL: baseURL, client: client}
}

// withQuery 在基础URL上附加查询参数，保留基础URL中已有的参数
func (r *HTTPRepository) withQuery(params map[string]string) (string, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return "", fmt.Errorf("无效的资料存储地址: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *HTTPRepository) idURL(id int64, extra ...string) (string, error) {
	params := map[string]string{"id": strconv.FormatInt(id, 10)}
	for i := 0; i+1 < len(extra); i += 2 {
		params[extra[i]] = extra[i+1]
	}
	return r.withQuery(params)
}

func (r *HTTPRepository) FetchAll(ctx context.Context) ([]Profile, error) {
	var resp listResponse
	if err := r.client.Do(ctx, "profile.FetchAll", http.MethodGet, r.baseURL, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Profiles == nil {
		return []Profile{}, nil
	}
	return dedupeByID(resp.Profiles), nil
}

func (r *HTTPRepository) IncrementView(ctx context.Context, id int64) error {
	u, err := r.idURL(id)
	if err != nil {
		return err
	}
	return r.client.Do(ctx, "profile.IncrementView", http.MethodPut, u, nil, nil)
}

func (r *HTTPRepository) ToggleLike(ctx context.Context, id int64, liked bool) error {
	action := "unlike"
	if liked {
		action = "like"
	}
	u, err := r.idURL(id, "action", action)
	if err != nil {
		return err
	}
	return r.client.Do(ctx, "profile.ToggleLike", http.MethodPost, u, nil, nil)
}

func (r *HTTPRepository) CreateProfile(ctx context.Context, fields Fields) (int64, error) {
	var resp createResponse
	if err := r.client.Do(ctx, "profile.CreateProfile", http.MethodPost, r.baseURL, fields, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (r *HTTPRepository) UpdateProfile(ctx context.Context, id int64, fields Fields) error {
	u, err := r.idURL(id)
	if err != nil {
		return err
	}
	return r.client.Do(ctx, "profile.UpdateProfile", http.MethodPatch, u, fields, nil)
}

func (r *HTTPRepository) DeleteProfile(ctx context.Context, id int64) error {
	u, err := r.idURL(id)
	if err != nil {
		return err
	}
	return r.client.Do(ctx, "profile.DeleteProfile", http.MethodDelete, u, nil, nil)
}
