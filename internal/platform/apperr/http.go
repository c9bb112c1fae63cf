package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

// ErrNotFound 表示请求的资料不在当前快照中
var ErrNotFound = errors.New("not found")

// ErrUnauthorized 表示管理入口未解锁
var ErrUnauthorized = errors.New("unauthorized")

// ErrRateLimited 表示请求超过了频率限制
var ErrRateLimited = errors.New("rate limited")

const networkMessage = "Не удалось связаться с сервером, попробуйте позже"

// FromBinding 把gin绑定错误转换为 ValidationError
func FromBinding(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return NewValidation(ve[0].Field(), "Поле обязательно для заполнения")
	}
	return NewValidation("", "Некорректный запрос")
}

// Status 把错误映射为HTTP状态码
func Status(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNetwork(err):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Respond 写入 {"error": "..."}。网络错误只返回通用提示，细节记录日志。
func Respond(c *gin.Context, err error) {
	status := Status(err)
	msg := err.Error()
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		msg = ve.Message
	case status == http.StatusTooManyRequests:
		msg = "Слишком много запросов, попробуйте позже"
	case status == http.StatusBadGateway:
		logger.L().Error("远程调用失败", zap.String("path", c.FullPath()), zap.Error(err))
		msg = networkMessage
	case status == http.StatusInternalServerError:
		logger.L().Error("请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "Внутренняя ошибка сервера"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
