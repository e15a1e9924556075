package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
	"github.com/sitedesk/sitedesk/internal/middleware"
)

func registerActivityRoutes(api *gin.RouterGroup, handler *handlers.ActivityHandler) {
	group := api.Group("/activity")
	group.Use(middleware.RequireAdmin())
	{
		group.GET("", handler.List)
		group.POST("/read-all", handler.MarkAllRead)
		group.POST("/:id/read", handler.MarkRead)
		group.POST("/:id/unread", handler.MarkUnread)
		group.POST("/:id/archive", handler.Archive)
		group.POST("/:id/unarchive", handler.Unarchive)
	}

	rules := api.Group("/notification-rules")
	rules.Use(middleware.RequireAdmin())
	{
		rules.GET("", handler.ListRules)
		rules.PATCH("/:type", handler.UpdateRule)
	}
}
