package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
)

func registerInventoryRoutes(api *gin.RouterGroup, materials *handlers.MaterialHandler, equipment *handlers.EquipmentHandler) {
	materialGroup := api.Group("/materials")
	{
		materialGroup.GET("", materials.List)
		materialGroup.POST("", materials.Create)
		materialGroup.GET("/:id", materials.Get)
		materialGroup.PATCH("/:id", materials.Update)
		materialGroup.DELETE("/:id", materials.Delete)
		materialGroup.POST("/:id/transactions", materials.RecordTransaction)
		materialGroup.GET("/:id/transactions", materials.Transactions)
	}

	equipmentGroup := api.Group("/equipment")
	{
		equipmentGroup.GET("", equipment.List)
		equipmentGroup.POST("", equipment.Create)
		equipmentGroup.GET("/:id", equipment.Get)
		equipmentGroup.PATCH("/:id", equipment.Update)
		equipmentGroup.DELETE("/:id", equipment.Delete)
		equipmentGroup.POST("/:id/maintenance", equipment.LogMaintenance)
		equipmentGroup.GET("/:id/maintenance", equipment.MaintenanceHistory)
	}
}
