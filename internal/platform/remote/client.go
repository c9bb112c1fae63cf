package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
)

// maxErrorBody 限制读取错误响应体的长度
const maxErrorBody = 512

// Client 是对托管HTTP函数的一个薄封装：JSON进，JSON出。
// 所有失败都被归一化为 *apperr.NetworkError。
type Client struct {
	http *http.Client
}

// NewClient 创建客户端。timeout 为0时不设置超时，此时只能依靠ctx取消。
func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// NewClientWith 使用调用方提供的 http.Client，测试中用于注入 httptest 的客户端
func NewClientWith(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Do 发送一次请求。body 为nil时不发送请求体；out 为nil时丢弃响应体。
func (c *Client) Do(ctx context.Context, op, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &apperr.NetworkError{Op: op, Err: fmt.Errorf("无法序列化请求体: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperr.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", bytes.TrimSpace(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperr.NetworkError{Op: op, Err: fmt.Errorf("无法解析响应: %w", err)}
	}
	return nil
}
