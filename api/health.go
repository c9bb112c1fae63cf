package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SlpAus/fame-list-backend/internal/listing"
	"github.com/SlpAus/fame-list-backend/internal/platform/health"
	"github.com/SlpAus/fame-list-backend/internal/platform/metadata"
)

// HealthHandler 汇总列表状态、Redis缓存状态和最近一次落盘时间
type HealthHandler struct {
	ctrl    *listing.Controller
	checker *health.Checker
	db      *gorm.DB
}

func NewHealthHandler(ctrl *listing.Controller, checker *health.Checker, db *gorm.DB) *HealthHandler {
	return &HealthHandler{ctrl: ctrl, checker: checker, db: db}
}

type healthResponse struct {
	Listing   string     `json:"listing"`
	Cache     string     `json:"cache"`
	LastFlush *time.Time `json:"last_flush,omitempty"`
}

// Check 处理 GET /healthz。列表加载失败时返回503，缓存降级不影响可用性。
func (h *HealthHandler) Check(c *gin.Context) {
	resp := healthResponse{
		Listing: h.ctrl.State().String(),
		Cache:   h.checker.State().String(),
	}
	if h.db != nil {
		if t, err := metadata.GetTime(h.db, metadata.LastFlushAtKey); err == nil && !t.IsZero() {
			resp.LastFlush = &t
		}
	}

	status := http.StatusOK
	if h.ctrl.State() == listing.StateLoadFailed {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
