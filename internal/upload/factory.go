package upload

import (
	"context"
	"fmt"

	"github.com/SlpAus/fame-list-backend/internal/platform/config"
	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
)

// New 按配置选择上传后端
func New(ctx context.Context, cfg *config.Config, client *remote.Client) (Uploader, error) {
	switch cfg.Upload.Backend {
	case config.UploadBackendRemote:
		return NewRemoteUploader(cfg.Remote.UploadURL, client), nil
	case config.UploadBackendMinio:
		return NewMinioUploader(ctx, cfg.Upload.Minio)
	default:
		return nil, fmt.Errorf("未知的上传后端: %q", cfg.Upload.Backend)
	}
}
