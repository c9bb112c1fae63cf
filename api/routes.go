package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SlpAus/fame-list-backend/internal/admin"
	"github.com/SlpAus/fame-list-backend/internal/complaint"
	"github.com/SlpAus/fame-list-backend/internal/listing"
	"github.com/SlpAus/fame-list-backend/internal/platform/metrics"
	"github.com/SlpAus/fame-list-backend/internal/session"
	"github.com/SlpAus/fame-list-backend/internal/user"
	"github.com/SlpAus/fame-list-backend/pkg/token"
)

// Deps 是注册路由需要的全部处理器
type Deps struct {
	Signer     *token.Signer
	Sessions   *session.Registry
	Listing    *listing.Handler
	Admin      *admin.Handler
	Complaints *complaint.Handler
	Health     *HealthHandler
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, d Deps) {
	router.GET("/healthz", d.Health.Check)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api", user.EnsureClientMiddleware(d.Signer), session.Middleware(d.Sessions))
	{
		api.GET("/castes", d.Listing.Castes)

		// 资料相关的路由组 /api/profiles
		profiles := api.Group("/profiles")
		{
			profiles.GET("", d.Listing.List)
			profiles.GET("/:id", d.Listing.Detail)
			profiles.POST("/:id/like", d.Listing.Like)
		}

		api.POST("/complaints", d.Complaints.Submit)

		// 管理相关的路由组 /api/admin
		adminRoutes := api.Group("/admin")
		{
			adminRoutes.POST("/login", d.Admin.Login)
			adminRoutes.POST("/logout", d.Admin.Logout)
			adminRoutes.GET("/status", d.Admin.Status)

			protected := adminRoutes.Group("/profiles", admin.RequireAdmin())
			protected.POST("", d.Admin.Create)
			protected.PATCH("/:id", d.Admin.Update)
			protected.DELETE("/:id", d.Admin.Delete)
		}
	}
}
