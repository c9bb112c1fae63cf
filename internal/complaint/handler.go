package complaint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
)

type Handler struct {
	svc     *Service
	limiter *Limiter
}

// NewHandler limiter 为nil时不限制频率
func NewHandler(svc *Service, limiter *Limiter) *Handler {
	return &Handler{svc: svc, limiter: limiter}
}

// Submit 处理 POST /api/complaints
func (h *Handler) Submit(c *gin.Context) {
	var body Complaint
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	if err := body.Validate(); err != nil {
		apperr.Respond(c, err)
		return
	}

	ctx := c.Request.Context()
	res, err := h.limiter.Acquire(ctx, c.ClientIP())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	defer res.RollbackUnlessCommitted(ctx)

	if err := h.svc.Submit(ctx, body); err != nil {
		apperr.Respond(c, err)
		return
	}
	res.Commit()
	c.JSON(http.StatusOK, gin.H{"message": "Жалоба отправлена"})
}
