package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// DashboardHandler exposes the aggregate stats endpoint.
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats returns portfolio-wide aggregates for the dashboard.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
