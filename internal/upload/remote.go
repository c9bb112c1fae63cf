package upload

import (
	"context"
	"errors"
	"net/http"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
)

// RemoteUploader 把图片交给托管的上传函数：POST {image} → {url}
type RemoteUploader struct {
	url    string
	client *remote.Client
}

func NewRemoteUploader(url string, client *remote.Client) *RemoteUploader {
	return &RemoteUploader{url: url, client: client}
}

type uploadRequest struct {
	Image string `json:"image"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (u *RemoteUploader) Upload(ctx context.Context, image string) (string, error) {
	const op = "upload.Remote"

	image, err := normalize(image)
	if err != nil {
		return "", err
	}

	var resp uploadResponse
	if err := u.client.Do(ctx, op, http.MethodPost, u.url, uploadRequest{Image: image}, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", &apperr.NetworkError{Op: op, Err: errors.New("响应中缺少url")}
	}
	return resp.URL, nil
}
