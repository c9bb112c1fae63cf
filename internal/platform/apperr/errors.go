package apperr

import (
	"errors"
	"fmt"
)

// NetworkError 表示与远程服务通信失败：传输层错误、非2xx状态码或无法解析的响应体。
type NetworkError struct {
	// Op 是失败的操作名，例如 "profile.FetchAll"
	Op string
	// Status 是远程返回的HTTP状态码，传输层失败时为0
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: 远程服务返回状态码 %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError 表示在发起任何网络请求之前就被拦截的输入错误。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation 是构造ValidationError的便捷函数
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNetwork 判断错误链中是否包含NetworkError
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsValidation 判断错误链中是否包含ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
