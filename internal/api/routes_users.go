package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
	"github.com/sitedesk/sitedesk/internal/middleware"
)

func registerUserRoutes(api *gin.RouterGroup, users *handlers.UserHandler) {
	group := api.Group("/users")
	group.Use(middleware.RequireAdmin())
	{
		group.GET("", users.List)
		group.GET("/:id", users.Get)
		group.POST("/:id/roles", users.GrantRole)
		group.DELETE("/:id/roles/:role", users.RevokeRole)
	}
}
