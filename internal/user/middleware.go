package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/pkg/token"
)

const (
	CookieName   = "fame-client"
	CookieMaxAge = 365 * 24 * 60 * 60
	ClientIDKey  = "clientID"
)

// EnsureClientMiddleware 确保每个请求都带有一个签名过的访客ID。
// Cookie缺失、签名错误或ID格式不正确时，签发新的ID并写回Cookie。
// 当前请求的访客ID放在gin上下文的 ClientIDKey 中。
func EnsureClientMiddleware(signer *token.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err == nil {
			if id, ok := signer.Verify(raw); ok && IsValidUUID(id) {
				c.Set(ClientIDKey, id)
				c.Next()
				return
			}
			logger.L().Debug("检测到无效的访客Cookie", zap.String("cookie", raw))
		} else if !errors.Is(err, http.ErrNoCookie) {
			logger.L().Debug("读取访客Cookie失败", zap.Error(err))
		}

		id, err := NewClientID()
		if err != nil {
			logger.L().Error("创建访客ID时发生错误", zap.Error(err))
			c.Next()
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, signer.Sign(id), CookieMaxAge, "/", "", false, true)
		c.Set(ClientIDKey, id)
		c.Next()
	}
}
