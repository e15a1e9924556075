package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// EquipmentHandler exposes equipment and maintenance endpoints.
type EquipmentHandler struct {
	equipment *services.EquipmentService
}

// NewEquipmentHandler constructs an EquipmentHandler.
func NewEquipmentHandler(equipment *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

type createEquipmentRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Type      string  `json:"type" validate:"required,max=64"`
	Condition string  `json:"condition"`
	Available *bool   `json:"available"`
	ProjectID *string `json:"project_id"`
}

type updateEquipmentRequest struct {
	Name      *string `json:"name"`
	Type      *string `json:"type"`
	Condition *string `json:"condition"`
	Available *bool   `json:"available"`
	ProjectID *string `json:"project_id"`
}

type logMaintenanceRequest struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description" validate:"required"`
	Cost        *float64  `json:"cost"`
}

// Create registers a piece of equipment. New equipment is available unless
// the request says otherwise.
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req createEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item, err := h.equipment.Create(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.CreateEquipmentInput{
		Name:      req.Name,
		Type:      req.Type,
		Condition: req.Condition,
		Available: available,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// List returns equipment with optional type/project/availability filters.
func (h *EquipmentHandler) List(c *gin.Context) {
	items, err := h.equipment.List(requestContext(c), c.Query("type"), c.Query("project_id"), parseBoolQuery(c, "available"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// Get returns a single piece of equipment.
func (h *EquipmentHandler) Get(c *gin.Context) {
	item, err := h.equipment.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// Update applies partial changes to a piece of equipment.
func (h *EquipmentHandler) Update(c *gin.Context) {
	var req updateEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.equipment.Update(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"), services.UpdateEquipmentInput{
		Name:      req.Name,
		Type:      req.Type,
		Condition: req.Condition,
		Available: req.Available,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// Delete removes a piece of equipment.
func (h *EquipmentHandler) Delete(c *gin.Context) {
	if err := h.equipment.Delete(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// LogMaintenance appends a maintenance entry for the equipment.
func (h *EquipmentHandler) LogMaintenance(c *gin.Context) {
	var req logMaintenanceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.equipment.LogMaintenance(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.LogMaintenanceInput{
		EquipmentID: c.Param("id"),
		Date:        req.Date,
		Description: req.Description,
		Cost:        req.Cost,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}

// MaintenanceHistory returns maintenance entries for the equipment.
func (h *EquipmentHandler) MaintenanceHistory(c *gin.Context) {
	entries, err := h.equipment.MaintenanceHistory(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entries)
}
