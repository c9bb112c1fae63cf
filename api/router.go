package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SlpAus/fame-list-backend/internal/platform/config"
	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/platform/metrics"
)

// NewRouter 创建带有通用中间件的gin引擎
func NewRouter(cfg config.ServerConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery(), metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	return r
}
