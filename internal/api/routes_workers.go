package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
)

func registerWorkerRoutes(api *gin.RouterGroup, workers *handlers.WorkerHandler) {
	group := api.Group("/workers")
	{
		group.GET("", workers.List)
		group.POST("", workers.Create)
		group.GET("/:id", workers.Get)
		group.PATCH("/:id", workers.Update)
		group.DELETE("/:id", workers.Delete)
		group.POST("/:id/attendance", workers.MarkAttendance)
		group.GET("/:id/attendance", workers.Attendance)
		group.POST("/:id/payments", workers.RecordPayment)
		group.GET("/:id/payments", workers.Payments)
	}
}
