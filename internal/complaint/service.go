package complaint

import (
	"context"
	"net/http"
	"strings"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
)

// Complaint 是对某个等级判定的申诉
type Complaint struct {
	Telegram   string `json:"telegram" binding:"required"`
	TargetUser string `json:"targetUser" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// Validate 去掉首尾空白后检查三个字段都不为空
func (c *Complaint) Validate() error {
	c.Telegram = strings.TrimSpace(c.Telegram)
	c.TargetUser = strings.TrimSpace(c.TargetUser)
	c.Reason = strings.TrimSpace(c.Reason)

	switch {
	case c.Telegram == "":
		return apperr.NewValidation("telegram", "Укажите ваш Telegram")
	case c.TargetUser == "":
		return apperr.NewValidation("targetUser", "Укажите пользователя")
	case c.Reason == "":
		return apperr.NewValidation("reason", "Укажите причину")
	}
	return nil
}

// Service 把申诉转发给托管的申诉函数
type Service struct {
	url    string
	client *remote.Client
}

func NewService(url string, client *remote.Client) *Service {
	return &Service{url: url, client: client}
}

// Submit 校验并发送申诉，校验失败时不发起网络请求
func (s *Service) Submit(ctx context.Context, c Complaint) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.client.Do(ctx, "complaint.Submit", http.MethodPost, s.url, c, nil)
}
