package upload

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
)

// MaxImageBytes 是解码后图片的大小上限
const MaxImageBytes = 5 << 20

// Uploader 把一张base64编码的图片上传到图片存储，返回可公开访问的URL。
// 上传成功但后续创建资料失败时，图片成为孤儿，不做清理。
type Uploader interface {
	Upload(ctx context.Context, image string) (string, error)
}

// stripDataURL 去掉 "data:image/png;base64," 前缀，浏览器的 FileReader 会带上它
func stripDataURL(image string) string {
	image = strings.TrimSpace(image)
	if strings.HasPrefix(image, "data:") {
		if i := strings.Index(image, ","); i >= 0 {
			return image[i+1:]
		}
	}
	return image
}

// normalize 校验并返回不带前缀的base64内容
func normalize(image string) (string, error) {
	image = stripDataURL(image)
	if image == "" {
		return "", apperr.NewValidation("image", "Изображение не передано")
	}
	if base64.StdEncoding.DecodedLen(len(image)) > MaxImageBytes+3 {
		return "", apperr.NewValidation("image", "Изображение слишком большое")
	}
	return image, nil
}
