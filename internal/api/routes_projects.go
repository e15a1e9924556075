package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
)

func registerProjectRoutes(api *gin.RouterGroup, projects *handlers.ProjectHandler, expenses *handlers.ExpenseHandler) {
	group := api.Group("/projects")
	{
		group.GET("", projects.List)
		group.POST("", projects.Create)
		group.GET("/:id", projects.Get)
		group.PATCH("/:id", projects.Update)
		group.POST("/:id/archive", projects.Archive)
		group.DELETE("/:id", projects.Delete)
	}

	expenseGroup := api.Group("/expenses")
	{
		expenseGroup.GET("", expenses.List)
		expenseGroup.POST("", expenses.Create)
		expenseGroup.PATCH("/:id", expenses.Update)
		expenseGroup.DELETE("/:id", expenses.Delete)
	}
}
