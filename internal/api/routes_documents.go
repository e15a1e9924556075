package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
)

func registerDocumentRoutes(api *gin.RouterGroup, documents *handlers.DocumentHandler) {
	group := api.Group("/documents")
	{
		group.GET("", documents.List)
		group.POST("", documents.Upload)
		group.GET("/:id/download", documents.Download)
		group.DELETE("/:id", documents.Delete)
	}
}
