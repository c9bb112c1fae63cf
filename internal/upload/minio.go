package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/platform/config"
)

// keyPrefix 是资料照片在桶中的目录
const keyPrefix = "profiles"

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MinioUploader 把图片直接写入MinIO/S3兼容的桶
type MinioUploader struct {
	client  *mclient.Client
	bucket  string
	baseURL string
}

// NewMinioUploader 创建客户端并检查桶是否存在
func NewMinioUploader(ctx context.Context, cfg config.MinioConfig) (*MinioUploader, error) {
	const op = "upload.NewMinioUploader"

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	scheme := "http"
	// endpoint 可以带协议，minio-go 只接受 host:port
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}
	if secure {
		scheme = "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q 不存在", op, cfg.Bucket)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = scheme + "://" + endpoint + "/" + cfg.Bucket
	}
	return &MinioUploader{client: client, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}, nil
}

func (u *MinioUploader) Upload(ctx context.Context, image string) (string, error) {
	const op = "upload.Minio"

	image, err := normalize(image)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return "", apperr.NewValidation("image", "Некорректное изображение")
	}
	if len(data) > MaxImageBytes {
		return "", apperr.NewValidation("image", "Изображение слишком большое")
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return "", apperr.NewValidation("image", "Неподдерживаемый формат изображения")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	key := path.Join(keyPrefix, id.String()+ext)

	_, err = u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", &apperr.NetworkError{Op: op, Status: mclient.ToErrorResponse(err).StatusCode, Err: err}
	}
	return u.baseURL + "/" + key, nil
}
