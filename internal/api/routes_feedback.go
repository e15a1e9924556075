package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
	"github.com/sitedesk/sitedesk/internal/middleware"
)

func registerFeedbackRoutes(api *gin.RouterGroup, feedback *handlers.FeedbackHandler) {
	group := api.Group("/feedback")
	{
		group.POST("", feedback.Submit)
		group.GET("", middleware.RequireAdmin(), feedback.List)
		group.POST("/:id/resolve", middleware.RequireAdmin(), feedback.Resolve)
	}
}
